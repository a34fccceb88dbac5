package response

import (
	"time"

	"commerce-core/internal/domain/account"

	"github.com/google/uuid"
)

type AccountResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Balance   int64     `json:"balance"`
	CreatedAt time.Time `json:"createdAt"`
}

func FromAccount(a *account.Account) *AccountResponse {
	return &AccountResponse{
		ID:        a.ID(),
		Name:      a.Name(),
		Balance:   a.Balance().Amount(),
		CreatedAt: a.CreatedAt(),
	}
}
