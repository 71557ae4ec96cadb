package model

// Models lists every table in creation order: a model only references
// tables that appear before it.
func Models() []interface{} {
	return []interface{}{
		&User{},
		&Institute{},
		&Student{},
		&Faculty{},
		&Course{},
		&AdmissionPeriod{},
		&Application{},
		&StudentInstituteApplication{},
		&Order{},
		&JWTTokenBlacklist{},
		&AdminAuditLog{},
		&CronJobLog{},
	}
}

type tabler interface {
	TableName() string
}

// TableNames returns the table names of Models in the same order.
func TableNames() []string {
	models := Models()
	names := make([]string, 0, len(models))
	for _, m := range models {
		names = append(names, m.(tabler).TableName())
	}
	return names
}
