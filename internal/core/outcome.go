package core

import "fmt"

// classify decides the outcome of an import from its error buckets. Any
// parse error rejects the whole file; so does a validation error in an
// inventory file, where a half-applied price list is worse than none.
// Sales validation errors only drop their own rows.
func classify(kind ImportKind, buckets ErrorBuckets) Outcome {
	if len(buckets.Parse) > 0 {
		return OutcomeFullRejection
	}
	if kind == KindInventory && len(buckets.Validation) > 0 {
		return OutcomeFullRejection
	}
	if len(buckets.Validation) == 0 && len(buckets.Processing) == 0 {
		return OutcomeFullSuccess
	}
	return OutcomePartialSuccess
}

func (b ErrorBuckets) total() int {
	return len(b.Parse) + len(b.Validation) + len(b.Processing)
}

// buildReport assembles the final report. succeeded is ignored for a
// rejected import since nothing was written.
func buildReport(kind ImportKind, attempted, succeeded int, buckets ErrorBuckets) ImportReport {
	for _, b := range []*[]RowError{&buckets.Parse, &buckets.Validation, &buckets.Processing} {
		if *b == nil {
			*b = []RowError{}
		}
	}

	outcome := classify(kind, buckets)
	if outcome == OutcomeFullRejection {
		succeeded = 0
	}

	report := ImportReport{
		Kind:      kind,
		Outcome:   outcome,
		Attempted: attempted,
		Succeeded: succeeded,
		Failed:    buckets.total(),
		Errors:    buckets,
	}
	report.Message = reportMessage(report)
	return report
}

func reportMessage(r ImportReport) string {
	if r.Kind == KindSales {
		switch r.Outcome {
		case OutcomeFullRejection:
			return fmt.Sprintf("CSV parsing complete with %d initial errors.", r.Failed)
		case OutcomePartialSuccess:
			return fmt.Sprintf("Sales CSV processed. %d sales recorded, %d failed.", r.Succeeded, r.Failed)
		default:
			return fmt.Sprintf("%d sales recorded successfully from CSV!", r.Succeeded)
		}
	}

	switch r.Outcome {
	case OutcomeFullRejection:
		return fmt.Sprintf("CSV parsing completed with errors. %d rows were skipped or invalid.", r.Failed)
	case OutcomePartialSuccess:
		return fmt.Sprintf("CSV processed. %d products successfully added/updated, but %d failed.", r.Succeeded, r.Failed)
	default:
		return fmt.Sprintf("%d products processed successfully from CSV!", r.Succeeded)
	}
}
