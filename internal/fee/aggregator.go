// Package fee sums selected subjects into a receipt total. Everything here is
// pure: no I/O, no clock, no shared state.
package fee

import (
	"fmt"

	"github.com/stemsi/feedesk-backend/internal/model"
	"github.com/stemsi/feedesk-backend/internal/money"
)

// ComputeTotal returns the sum of the selected fees. An empty selection totals 0.00.
func ComputeTotal(selected []model.SelectedSubject) money.Money {
	total := money.Zero
	for _, s := range selected {
		total = total.Add(s.Fee)
	}
	return total
}

// ParseSelection converts client-supplied lines into snapshots, coercing each
// fee to a canonical amount. The returned error wraps money.ErrInvalidFeeFormat
// or money.ErrNegativeAmount and names the offending subject.
func ParseSelection(raw []model.SelectedSubjectInput) ([]model.SelectedSubject, error) {
	out := make([]model.SelectedSubject, 0, len(raw))
	for _, in := range raw {
		amount, err := money.Parse(in.Fee.String())
		if err != nil {
			return nil, fmt.Errorf("subject %s: %w", in.SubjectCode, err)
		}
		out = append(out, model.SelectedSubject{
			SubjectCode: in.SubjectCode,
			SubjectName: in.SubjectName,
			Fee:         amount,
		})
	}
	return out, nil
}

// Preview parses raw lines and totals them in one step.
func Preview(raw []model.SelectedSubjectInput) (money.Money, error) {
	selected, err := ParseSelection(raw)
	if err != nil {
		return money.Zero, err
	}
	return ComputeTotal(selected), nil
}
