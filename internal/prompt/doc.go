// Package prompt assembles bounded-length prompts for the answering
// pipeline: role and format instructions, a numbered context section
// built from ranked chunks, a recent-history window and the question
// itself. Token estimation and compression live here so every budget
// decision in the module uses the same arithmetic.
package prompt
