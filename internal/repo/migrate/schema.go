package migrate

import (
	"entgo.io/ent/dialect/entsql"
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"

	entschema "github.com/ridhamz/AppointmentEase/internal/schema"
)

var (
	// UsersColumns holds the columns for the "users" table.
	UsersColumns = []*schema.Column{
		{Name: "id", Type: field.TypeUUID},
		{Name: "created_at", Type: field.TypeTime},
		{Name: "name", Type: field.TypeString},
		{Name: "email", Type: field.TypeString, Unique: true},
		{Name: "role", Type: field.TypeEnum, Enums: []string{"client", "professional", "admin"}},
	}
	// UsersTable holds the schema information for the "users" table.
	UsersTable = &schema.Table{
		Name:       "users",
		Columns:    UsersColumns,
		PrimaryKey: []*schema.Column{UsersColumns[0]},
		Indexes: []*schema.Index{
			{
				Name:    "user_role",
				Unique:  false,
				Columns: []*schema.Column{UsersColumns[4]},
			},
		},
		Annotation: &entsql.Annotation{
			Checks: map[string]string{
				"users_role_check": "role IN ('client', 'professional', 'admin')",
			},
		},
	}
	// AppointmentsColumns holds the columns for the "appointments" table.
	AppointmentsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeUUID},
		{Name: "created_at", Type: field.TypeTime},
		{Name: "updated_at", Type: field.TypeTime},
		{Name: "title", Type: field.TypeString},
		{Name: "scheduled_at", Type: field.TypeTime},
		{Name: "slot_bucket", Type: field.TypeTime},
		{Name: "notes", Type: field.TypeString, Size: 2147483647, Default: ""},
		{Name: "status", Type: field.TypeEnum, Enums: []string{"pending", "confirmed", "completed", "canceled"}, Default: "pending"},
		{Name: "client_id", Type: field.TypeUUID},
		{Name: "professional_id", Type: field.TypeUUID},
	}
	// AppointmentsTable holds the schema information for the "appointments" table.
	AppointmentsTable = &schema.Table{
		Name:       "appointments",
		Columns:    AppointmentsColumns,
		PrimaryKey: []*schema.Column{AppointmentsColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "appointments_users_booked",
				Columns:    []*schema.Column{AppointmentsColumns[8]},
				RefColumns: []*schema.Column{UsersColumns[0]},
				OnDelete:   schema.NoAction,
			},
			{
				Symbol:     "appointments_users_attending",
				Columns:    []*schema.Column{AppointmentsColumns[9]},
				RefColumns: []*schema.Column{UsersColumns[0]},
				OnDelete:   schema.NoAction,
			},
		},
		Indexes: []*schema.Index{
			{
				Name:    "appointment_professional_id_slot_bucket",
				Unique:  true,
				Columns: []*schema.Column{AppointmentsColumns[9], AppointmentsColumns[5]},
				Annotation: &entsql.IndexAnnotation{
					Where: entschema.LiveSlotPredicate,
				},
			},
			{
				Name:    "appointment_professional_id_scheduled_at",
				Unique:  false,
				Columns: []*schema.Column{AppointmentsColumns[9], AppointmentsColumns[4]},
			},
			{
				Name:    "appointment_client_id",
				Unique:  false,
				Columns: []*schema.Column{AppointmentsColumns[8]},
			},
			{
				Name:    "appointment_status",
				Unique:  false,
				Columns: []*schema.Column{AppointmentsColumns[7]},
			},
		},
		Annotation: &entsql.Annotation{
			Checks: map[string]string{
				"appointments_status_check": "status IN ('pending', 'confirmed', 'completed', 'canceled')",
			},
		},
	}
	// Tables holds all the tables in the schema.
	Tables = []*schema.Table{
		UsersTable,
		AppointmentsTable,
	}
)

func init() {
	AppointmentsTable.ForeignKeys[0].RefTable = UsersTable
	AppointmentsTable.ForeignKeys[1].RefTable = UsersTable
}

// Columns returns the column names of t in declaration order.
func Columns(t *schema.Table) []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}
