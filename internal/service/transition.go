package service

import "github.com/jshao/jobtrackiq/internal/domain"

// ApplyTransition evaluates an incoming event type against an application's
// current status and stage and returns the resulting pair, or a validation
// error when the event is illegal. It is a pure function: persistence,
// duplicate suppression and timestamps are the caller's concern.
//
// Rules, in precedence order:
//  1. a final status (offer/rejected/closed) accepts nothing but reopen
//  2. reopen unconditionally resets to active/applied
//  3. offer, rejection and closed each jump to their terminal pair
//  4. applied raises the stage to applied only if that is not a downgrade
//  5. follow_up keeps the stage untouched
//  6. interview_1/interview_2 advance the stage and reject regressions
func ApplyTransition(status domain.ApplicationStatus, stage domain.Stage, eventType domain.EventType) (domain.ApplicationStatus, domain.Stage, error) {
	if !domain.KnownEventType(eventType) {
		return status, stage, domain.NewValidationError("unknown event_type: %s", eventType)
	}

	// Final status locks the application; reopen is the only escape hatch.
	if status.IsFinal() && eventType != domain.EventReopen {
		return status, stage, domain.NewValidationError(
			"cannot add '%s' when status is '%s'; use 'reopen' first", eventType, status)
	}

	switch eventType {
	case domain.EventReopen:
		return domain.StatusActive, domain.StageApplied, nil

	case domain.EventOffer:
		return domain.StatusOffer, domain.StageOffer, nil

	case domain.EventRejection:
		return domain.StatusRejected, domain.StageRejection, nil

	case domain.EventClosed:
		return domain.StatusClosed, domain.StageClosed, nil

	case domain.EventApplied:
		if status == "" {
			status = domain.StatusActive
		}
		// Set the stage back to applied only when that is not a downgrade of
		// a later stage.
		if domain.StageRank(domain.StageApplied) >= currentRank(stage) {
			stage = domain.StageApplied
		}
		return status, stage, nil

	case domain.EventFollowUp:
		if status == "" {
			status = domain.StatusActive
		}
		return status, stage, nil

	case domain.EventInterview1, domain.EventInterview2:
		if status == "" {
			status = domain.StatusActive
		}
		current := stage
		if current == "" {
			current = domain.StageApplied
		}
		next := domain.Stage(eventType)
		if domain.StageRank(next) < domain.StageRank(current) {
			return status, stage, domain.NewValidationError(
				"cannot move stage backwards (%s -> %s)", current, next)
		}
		return status, next, nil
	}

	// Unreachable while the vocabulary and the switch stay in sync; an event
	// type landing here is a programming error, not user input.
	return status, stage, domain.NewValidationError("unhandled event_type: %s", eventType)
}

func currentRank(stage domain.Stage) int {
	if stage == "" {
		stage = domain.StageApplied
	}
	return domain.StageRank(stage)
}
