package testutil

import (
	"raffler/models"
)

// CreateTestEntrant creates an entrant with default values
func CreateTestEntrant(roundNumber int64, participantID string) *models.Entrant {
	return &models.Entrant{
		RoundNumber:   roundNumber,
		ParticipantID: participantID,
		AmountPaid:    100,
	}
}

// CreateTestRequest creates a pending randomness request for a round
func CreateTestRequest(requestID string, roundNumber int64) *models.RandomnessRequest {
	return &models.RandomnessRequest{
		RequestID:         requestID,
		RoundNumber:       roundNumber,
		ConfirmationDepth: 3,
		CallbackBudget:    500000,
		NumValues:         models.NumRandomValues,
	}
}
