package ports

// RunObserver receives per-stage results of a pipeline run.
// Used for metrics only; implementations must not affect the run.
type RunObserver interface {
	// ObserveParse records how many lines were read and how many became records.
	ObserveParse(linesRead, recordsParsed int)

	// ObserveStageError records a contained failure in the named stage.
	ObserveStageError(stage string)

	// ObserveOutcome records the sizes of the derived results.
	ObserveOutcome(failedIPs, threatEntries, matchedThreats int)
}
