package models

// Portfolio is the owner's exportable data set, also served publicly with a share token.
type Portfolio struct {
	Student  *Profile  `json:"student"`
	Courses  []Course  `json:"courses"`
	Projects []Project `json:"projects"`
}

// AllModels lists every persisted model in migration order.
func AllModels() []interface{} {
	return []interface{}{
		&User{},
		&Profile{},
		&Course{},
		&Project{},
		&ProgressLogEntry{},
		&Achievement{},
		&Submission{},
		&InstructorGroup{},
	}
}
