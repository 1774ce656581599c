package models

// All lists every model owned by the assignment module, in migration order.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Course{},
		&Enrolment{},
		&Scale{},
		&Assignment{},
		&Submission{},
		&Grade{},
		&PluginDescriptor{},
		&AssignmentPluginConfig{},
		&OnlineTextSubmission{},
		&FeedbackComment{},
		&StoredFile{},
		&ActivityLog{},
	}
}
