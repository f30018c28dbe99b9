package record

import (
	"time"

	"github.com/uptrace/bun"
)

type Transcript struct {
	bun.BaseModel `bun:"table:transcripts,alias:tr"`

	ID             int64     `bun:"id,pk,autoincrement"`
	VisitID        int64     `bun:"visit_id,notnull"`
	Text           string    `bun:"transcript_text,notnull"`
	IdempotencyKey string    `bun:"idempotency_key,notnull,unique"`
	CreatedAt      time.Time `bun:"created_at,notnull,default:current_timestamp"`
}

type SoapNote struct {
	bun.BaseModel `bun:"table:soap_notes,alias:sn"`

	ID             int64     `bun:"id,pk,autoincrement"`
	VisitID        int64     `bun:"visit_id,notnull"`
	Subjective     string    `bun:"subjective,notnull"`
	Objective      string    `bun:"objective,notnull"`
	Assessment     string    `bun:"assessment,notnull"`
	TreatmentPlan  string    `bun:"treatment_plan,notnull"`
	IdempotencyKey string    `bun:"idempotency_key,notnull,unique"`
	CreatedAt      time.Time `bun:"created_at,notnull,default:current_timestamp"`
}
