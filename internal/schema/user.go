package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/edge"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// User is a directory entry. Emails are stored lowercased.
type User struct {
	ent.Schema
}

func (User) Mixin() []ent.Mixin {
	return []ent.Mixin{
		UUIDV7Mixin{},
		CreatedAtMixin{},
	}
}

func (User) Fields() []ent.Field {
	return []ent.Field{
		field.String("name").
			NotEmpty(),

		field.String("email").
			Unique(),

		field.Enum("role").
			Values("client", "professional", "admin"),
	}
}

func (User) Edges() []ent.Edge {
	return []ent.Edge{
		edge.To("booked", Appointment.Type),
		edge.To("attending", Appointment.Type),
	}
}

func (User) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("role"),
	}
}
