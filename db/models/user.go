package models

import (
	"context"
	"time"

	"github.com/uptrace/bun"
)

type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID           string    `json:"id" bun:",pk"`
	Email        string    `json:"email" bun:",notnull,unique"`
	PasswordHash string    `json:"-" bun:",notnull"`
	CompanyName  string    `json:"companyName" bun:",nullzero"`
	Siret        string    `json:"siret" bun:",nullzero"`
	Address      string    `json:"address" bun:",nullzero"`
	CreatedAt    time.Time `json:"createdAt" bun:",nullzero,notnull,default:current_timestamp"`
	UpdatedAt    time.Time `json:"updatedAt" bun:",nullzero,notnull,default:current_timestamp"`
}

func (u *User) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	switch query.(type) {
	case *bun.UpdateQuery:
		u.UpdatedAt = time.Now()
	}
	return nil
}

var _ bun.BeforeAppendModelHook = (*User)(nil)
