package chat

import "github.com/northpole/elf-backend/internal/entity"

// toSessionDTO converts ChatSession entity to SessionDTO
func toSessionDTO(session *entity.ChatSession) *entity.SessionDTO {
	messages := make([]entity.MessageDTO, 0, len(session.Transcript))
	for _, msg := range session.Transcript {
		messages = append(messages, entity.MessageDTO{Role: msg.Role, Content: msg.Content})
	}

	return &entity.SessionDTO{
		ID:        session.ID,
		Persona:   session.Persona,
		Status:    session.Status,
		Budget:    session.Budget,
		Messages:  messages,
		ResultID:  session.ResultID,
		CreatedAt: session.CreatedAt,
		UpdatedAt: session.UpdatedAt,
	}
}

// toResultDTO converts GiftResult entity to GiftResultDTO
func toResultDTO(result *entity.GiftResult) *entity.GiftResultDTO {
	return &entity.GiftResultDTO{
		ID:          result.ID,
		Suggestions: result.Suggestions,
		CreatedAt:   result.CreatedAt,
	}
}
