package placement

import "github.com/trezcool/kampus/core"

func init() {
	core.RegisterEmailTemplates(map[string]map[string]string{
		"placement-announced": {
			".txt": `Hi {{.Data.Student.Name}},

{{.Data.Placement.Company}} is hiring for {{.Data.Placement.Role}}.
Drive date: {{.Data.Placement.DriveDate.Format "2006-01-02"}}
Last day to apply: {{.Data.Placement.Deadline.Format "2006-01-02"}}

See the details and apply at {{.FrontendBaseURL}}/placements.
`,
		},
		"placement-reminder": {
			".txt": `Hi {{.Data.Student.Name}},

Reminder: the {{.Data.Placement.Company}} drive for {{.Data.Placement.Role}} is tomorrow
({{.Data.Placement.DriveDate.Format "2006-01-02"}}). A leave for the day has been filed for you.

Good luck!
`,
		},
		"placement-deadline": {
			".txt": `Hi {{.Data.Student.Name}},

Applications for {{.Data.Placement.Role}} at {{.Data.Placement.Company}} close on
{{.Data.Placement.Deadline.Format "2006-01-02"}} and your skills are a match. Apply at
{{.FrontendBaseURL}}/placements before it is too late.
`,
		},
	})
}
