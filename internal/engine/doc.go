// Package engine contains the turn and phase machinery of Roboticon Quest.
// This is the heartbeat of the game: a five-phase cycle over the player
// roster, with the market, trade book, random effects, and AI turns all
// orchestrated behind one mutex.
package engine
