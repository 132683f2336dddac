// Package retrieval selects which retrieved chunks become generation
// context.
//
// A pure similarity threshold silently returns nothing when the index
// only holds marginal matches, so Assemble guarantees a fallback: when
// no chunk clears the threshold, the best-ranked chunks are used anyway
// with their recorded scores raised to a floor. The floor keeps
// near-zero fallback scores from being reported as if they barely
// missed the cutoff.
package retrieval
