// Package synthesis generates grounded answers from retrieved document
// chunks using a chat completion model.
//
// The service builds a prompt from the question and the retrieved
// context blocks, calls a configured chat model, and post-processes the
// raw completion to strip meta-references to the retrieval mechanics
// ("According to the document, ...") before returning it. When no
// chunks survive relevance filtering the service short-circuits with a
// fixed fallback answer and zero confidence without calling the model.
//
// Confidence is the mean similarity score of the chunks used for the
// answer, reported in the [0, 1] range.
package synthesis
