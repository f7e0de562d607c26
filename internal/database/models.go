package database

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Account is the accounts table row. The email column carries a unique
// constraint; violating it is how duplicate registration is detected.
type Account struct {
	bun.BaseModel `bun:"table:accounts,alias:a"`

	ID                 uuid.UUID `bun:"id,pk,type:uuid,default:gen_random_uuid()"`
	Email              string    `bun:"email,notnull,unique"`
	PasswordHash       string    `bun:"password_hash,notnull"`
	Verified           bool      `bun:"verified,notnull,default:false"`
	VerificationToken  string    `bun:"verification_token,nullzero"`
	PasswordResetToken string    `bun:"password_reset_token,nullzero"`
	Role               string    `bun:"role,notnull,default:'hacker'"`
	CreatedAt          time.Time `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt          time.Time `bun:"updated_at,notnull,default:current_timestamp"`
}

// Profile holds registrant profile data, owned by the (out of scope) profile
// service. Only read here, for the post-verification mailing-list subscription.
type Profile struct {
	bun.BaseModel `bun:"table:profiles,alias:p"`

	ID        uuid.UUID `bun:"id,pk,type:uuid,default:gen_random_uuid()"`
	AccountID uuid.UUID `bun:"account_id,notnull,type:uuid"`
	FirstName string    `bun:"first_name"`
	LastName  string    `bun:"last_name"`
	Email     string    `bun:"email"`
}
