package modelregistry

import "github.com/dukex/talentflow/pkg/models"

var allEvents = []models.EventKind{
	models.EventKindCreated,
	models.EventKindUpdated,
	models.EventKindDeleted,
	models.EventKindStageChanged,
}

// DefaultModels is the built-in recruiting catalog.
func DefaultModels() []models.AutomatableModel {
	return []models.AutomatableModel{
		{
			Key:         "lead",
			DisplayName: "Lead",
			Fields: map[string]models.FieldType{
				"id":         models.FieldTypeString,
				"first_name": models.FieldTypeString,
				"last_name":  models.FieldTypeString,
				"email":      models.FieldTypeEmail,
				"phone":      models.FieldTypeString,
				"source":     models.FieldTypeString,
				"company_id": models.FieldTypeRelation,
				"stage":      models.FieldTypeString,
				"created_at": models.FieldTypeDate,
			},
			Events: allEvents,
			Stages: []string{"new", "contacted", "qualified", "converted", "lost"},
		},
		{
			Key:         "company",
			DisplayName: "Company",
			Fields: map[string]models.FieldType{
				"id":         models.FieldTypeString,
				"name":       models.FieldTypeString,
				"website":    models.FieldTypeURL,
				"industry":   models.FieldTypeString,
				"size":       models.FieldTypeNumber,
				"created_at": models.FieldTypeDate,
			},
			Events: []models.EventKind{models.EventKindCreated, models.EventKindUpdated, models.EventKindDeleted},
		},
		{
			Key:         "candidate",
			DisplayName: "Candidate",
			Fields: map[string]models.FieldType{
				"id":         models.FieldTypeString,
				"first_name": models.FieldTypeString,
				"last_name":  models.FieldTypeString,
				"email":      models.FieldTypeEmail,
				"phone":      models.FieldTypeString,
				"resume_url": models.FieldTypeURL,
				"stage":      models.FieldTypeString,
				"created_at": models.FieldTypeDate,
			},
			Events: allEvents,
			Stages: []string{"sourced", "screening", "interviewing", "hired", "rejected"},
		},
		{
			Key:         "application",
			DisplayName: "Application",
			Fields: map[string]models.FieldType{
				"id":           models.FieldTypeString,
				"candidate_id": models.FieldTypeRelation,
				"job_id":       models.FieldTypeRelation,
				"email":        models.FieldTypeEmail,
				"stage":        models.FieldTypeString,
				"applied_at":   models.FieldTypeDate,
				"remote":       models.FieldTypeBoolean,
			},
			Events: allEvents,
			Stages: []string{"applied", "screen", "interview", "offer", "hired", "rejected"},
		},
	}
}

// Default returns a registry holding DefaultModels.
func Default() *Registry {
	registry, err := New(DefaultModels()...)
	if err != nil {
		panic(err)
	}

	return registry
}
