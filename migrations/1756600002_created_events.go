package migrations

import (
	"github.com/pocketbase/pocketbase/core"
	m "github.com/pocketbase/pocketbase/migrations"
)

func init() {
	m.Register(func(app core.App) error {
		collection := core.NewBaseCollection("events")

		collection.Fields.Add(
			&core.TextField{Name: "owner_id", Required: true},
			&core.TextField{Name: "name", Required: true},
			&core.TextField{Name: "venue"},
			&core.DateField{Name: "date"},
			&core.SelectField{
				Name:      "status",
				MaxSelect: 1,
				Values:    []string{"draft", "planned", "completed", "cancelled"},
			},
			&core.AutodateField{Name: "created", OnCreate: true},
			&core.AutodateField{Name: "updated", OnCreate: true, OnUpdate: true},
		)

		collection.AddIndex("idx_events_owner", false, "owner_id", "")

		return app.Save(collection)
	}, func(app core.App) error {
		collection, err := app.FindCollectionByNameOrId("events")
		if err != nil {
			return err
		}
		return app.Delete(collection)
	})
}
