package dashboard

var fallbackData = DashboardData{
	TotalHours:      "32.5h",
	ActiveAssignees: 4,
	TasksWorked:     12,
	WorklogDate:     "Friday, December 15, 2023",
	SelectedGroup:   nil,
	AssigneeWorklogs: []AssigneeWorklog{
		{
			AssigneeId:      "user1",
			Name:            "John Doe",
			Email:           "john.doe@company.com",
			Initials:        "JD",
			TasksCount:      5,
			HoursLogged:     "8.5h",
			ProgressPercent: 85,
			Status:          StatusActive,
		},
		{
			AssigneeId:      "user2",
			Name:            "Sarah Adams",
			Email:           "sarah.adams@company.com",
			Initials:        "SA",
			TasksCount:      3,
			HoursLogged:     "7.0h",
			ProgressPercent: 70,
			Status:          StatusActive,
		},
		{
			AssigneeId:      "user3",
			Name:            "Mike Johnson",
			Email:           "mike.johnson@company.com",
			Initials:        "MJ",
			TasksCount:      4,
			HoursLogged:     "9.0h",
			ProgressPercent: 100,
			Status:          StatusActive,
		},
		{
			AssigneeId:      "user4",
			Name:            "Lisa Chen",
			Email:           "lisa.chen@company.com",
			Initials:        "LC",
			TasksCount:      0,
			HoursLogged:     "0.0h",
			ProgressPercent: 0,
			Status:          StatusInactive,
		},
	},
	Tasks: []TaskEntry{
		{
			Key:          "DEV-1234",
			Summary:      "Implement user authentication flow",
			Status:       "In Progress",
			Assignee:     "John Doe",
			WorklogHours: "2.5h",
		},
		{
			Key:          "DEV-1235",
			Summary:      "Fix responsive layout on mobile devices",
			Status:       "Done",
			Assignee:     "Sarah Adams",
			WorklogHours: "4.0h",
		},
		{
			Key:          "DEV-1236",
			Summary:      "Optimize database queries",
			Status:       "In Progress",
			Assignee:     "Mike Johnson",
			WorklogHours: "3.5h",
		},
	},
}

// FallbackData returns the static dataset served whenever live data is unavailable.
// Every call returns a fresh copy.
func FallbackData() DashboardData {
	return fallbackData.Clone()
}
