package studyguard

import (
	"context"
	"errors"

	"github.com/mednet-labs/studyguard/submission"
)

// CheckSchemaConformance validates an answer set against its form
// schema. Fail-fast: the first violation rejects the whole submission.
func (e *Engine) CheckSchemaConformance(ctx context.Context, answers submission.AnswerSet, schema submission.Schema) error {
	if e == nil {
		return ErrEngineNotReady
	}
	if err := submission.CheckSchemaConformance(answers, schema); err != nil {
		e.metricInc(MetricSubmissionRejected)
		e.emitValidationAudit(ctx, auditEventSubmissionRejected, err)
		return err
	}
	return nil
}

// CheckNoIdentifiers runs the PII leak guard over every scalar leaf of
// the answer set. The rejected value itself is never echoed back.
func (e *Engine) CheckNoIdentifiers(ctx context.Context, answers submission.AnswerSet) error {
	if e == nil {
		return ErrEngineNotReady
	}
	if err := submission.CheckNoIdentifiersStrictness(answers, e.config.Submission.Strictness); err != nil {
		e.metricInc(MetricIdentifierBlocked)
		e.emitValidationAudit(ctx, auditEventIdentifierBlocked, err)
		return err
	}
	return nil
}

// ValidateSubmission runs both gates. Each raises independently, so the
// order does not change the outcome; both must pass before an answer
// set is safe to hand to persistence.
func (e *Engine) ValidateSubmission(ctx context.Context, answers submission.AnswerSet, schema submission.Schema) error {
	if err := e.CheckNoIdentifiers(ctx, answers); err != nil {
		return err
	}
	return e.CheckSchemaConformance(ctx, answers, schema)
}

func (e *Engine) emitValidationAudit(ctx context.Context, eventType string, err error) {
	var verr *submission.ValidationError
	if !errors.As(err, &verr) {
		return
	}
	e.emitAudit(ctx, eventType, false, "", "", "", verr.Kind, func() map[string]string {
		return map[string]string{"field": verr.Field}
	})
}
