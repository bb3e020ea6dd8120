// Package report turns analysis results into the summary, comparison,
// allocation and worksheet tables and renders or exports them.
package report
