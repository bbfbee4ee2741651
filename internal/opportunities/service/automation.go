package service

import (
	"context"
	"fmt"
	"time"

	"salesdesk_backend/internal/activities"
	"salesdesk_backend/internal/opportunities/repository"
	"salesdesk_backend/internal/pipeline"
	"salesdesk_backend/internal/tasks"
	"salesdesk_backend/platform/db"
)

// followUpDelay is how far out the automation follow-up task is due.
const followUpDelay = 72 * time.Hour

// runAutomation creates the note activity and follow-up task a stage
// transition requires, on the transition's own transaction. If either write
// fails the whole stage change rolls back: the stage must never move without
// its automation trail, and automation rows must never exist without the move.
func (s *Service) runAutomation(ctx context.Context, q db.Querier, opp repository.Joined, stage pipeline.Stage) error {
	now := s.now()

	noteDescription := fmt.Sprintf("%s moved to stage %s.", opp.Name, stage.Name)
	_, err := s.collab.Activities.Create(ctx, q, activities.CreateActivityParams{
		Type:          activities.TypeNote,
		Subject:       fmt.Sprintf("Stage changed to %s", stage.Name),
		Description:   &noteDescription,
		OccurredAt:    now,
		OwnerID:       opp.OwnerID,
		AccountID:     &opp.AccountID,
		OpportunityID: &opp.ID,
		ContactID:     opp.ContactID,
	})
	if err != nil {
		return fmt.Errorf("automation activity: %w", err)
	}

	dueDate := now.Add(followUpDelay)
	taskDescription := fmt.Sprintf("Follow up on %s after moving to %s.", opp.Name, stage.Name)
	_, err = s.collab.Tasks.Create(ctx, q, tasks.CreateTaskParams{
		Title:         fmt.Sprintf("Follow up (%s)", stage.Name),
		Description:   &taskDescription,
		Status:        tasks.StatusOpen,
		Priority:      tasks.PriorityMedium,
		DueDate:       &dueDate,
		OwnerID:       opp.OwnerID,
		AccountID:     &opp.AccountID,
		OpportunityID: &opp.ID,
		ContactID:     opp.ContactID,
	})
	if err != nil {
		return fmt.Errorf("automation task: %w", err)
	}
	return nil
}
