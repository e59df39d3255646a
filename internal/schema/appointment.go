package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/dialect/entsql"
	"entgo.io/ent/schema/edge"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"

	"github.com/google/uuid"
)

// LiveSlotPredicate limits the slot uniqueness index to appointments that
// still occupy the professional's time.
const LiveSlotPredicate = "status <> 'canceled'"

// Appointment is a booking between a client and a professional.
type Appointment struct {
	ent.Schema
}

func (Appointment) Mixin() []ent.Mixin {
	return []ent.Mixin{
		UUIDV7Mixin{},
		TimeStampedMixin{},
	}
}

func (Appointment) Fields() []ent.Field {
	return []ent.Field{
		field.String("title").
			NotEmpty(),

		field.Time("scheduled_at"),

		field.Time("slot_bucket").
			Comment("scheduled_at truncated to booking.slot_bucket"),

		field.Text("notes").
			Default(""),

		field.Enum("status").
			Values("pending", "confirmed", "completed", "canceled").
			Default("pending"),

		field.UUID("client_id", uuid.UUID{}).
			Comment("FK → users.id"),

		field.UUID("professional_id", uuid.UUID{}).
			Comment("FK → users.id"),
	}
}

func (Appointment) Edges() []ent.Edge {
	return []ent.Edge{
		edge.From("client", User.Type).
			Ref("booked").
			Field("client_id").
			Unique().
			Required(),
		edge.From("professional", User.Type).
			Ref("attending").
			Field("professional_id").
			Unique().
			Required(),
	}
}

func (Appointment) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("professional_id", "slot_bucket").
			Unique().
			Annotations(entsql.IndexWhere(LiveSlotPredicate)),
		index.Fields("professional_id", "scheduled_at"),
		index.Fields("client_id"),
		index.Fields("status"),
	}
}
