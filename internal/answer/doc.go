// Package answer turns raw LLM output into a structured, validated
// answer: section parsing, citation extraction against the retrieval
// candidates, confidence scoring and the fixed fallback answers used
// when any stage of the pipeline cannot produce a grounded response.
package answer
