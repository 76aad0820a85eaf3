package core

import "gwi.com/induction-assistant/internal/store"

const defaultDepartment = "General"

var categoryDepartments = map[string]string{
	"fixed_qa":            "General",
	"benefits":            "HR",
	"code_of_conduct":     "HR",
	"leave_policy":        "HR",
	"hr_contacts":         "HR",
	"company_overview":    "General",
	"company_timings":     "HR",
	"it_support":          "IT",
	"it_tools":            "IT",
	"department_info":     "General",
	"departments":         "General",
	"company_policies":    "HR",
	"onboarding_training": "HR",
}

// Department maps a category to the department that owns it.
func Department(category string) string {
	if d, ok := categoryDepartments[category]; ok {
		return d
	}
	return defaultDepartment
}

type Analytics struct {
	TotalSessions       int            `json:"total_sessions"`
	TotalQuestions      int            `json:"total_questions"`
	CategoryCounts      map[string]int `json:"category_counts"`
	DepartmentCounts    map[string]int `json:"department_counts"`
	MostPopularCategory *string        `json:"most_popular_category"`
}

// ComputeAnalytics counts answered questions per category and department.
// Ties for the most popular category go to the one seen first.
func ComputeAnalytics(sessions []store.Session) Analytics {
	a := Analytics{
		TotalSessions:    len(sessions),
		CategoryCounts:   map[string]int{},
		DepartmentCounts: map[string]int{},
	}

	var order []string
	for _, sess := range sessions {
		for _, turn := range sess.Turns {
			if turn.Role != store.RoleAssistant {
				continue
			}
			a.TotalQuestions++
			cat := turn.Category
			if cat == "" {
				cat = GeneralCategory
			}
			if _, seen := a.CategoryCounts[cat]; !seen {
				order = append(order, cat)
			}
			a.CategoryCounts[cat]++
			a.DepartmentCounts[Department(cat)]++
		}
	}

	best := 0
	for _, cat := range order {
		if n := a.CategoryCounts[cat]; n > best {
			best = n
			name := cat
			a.MostPopularCategory = &name
		}
	}
	return a
}
