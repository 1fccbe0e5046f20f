package model

// All lists every table for AutoMigrate.
func All() []interface{} {
	return []interface{}{
		&Portfolio{},
		&Lock{},
		&Transaction{},
		&StatusLevel{},
		&SiteSetting{},
		&Profile{},
		&Referral{},
		&DailyCheckin{},
		&Brand{},
		&LearningModule{},
		&LearningCompletion{},
		&Notification{},
	}
}
