package user

import "github.com/trezcool/kampus/core"

func init() {
	core.RegisterEmailTemplates(map[string]map[string]string{
		"user-welcome": {
			".txt": `Hi {{.Data.User.Name}},

An account has been created for you.

Email: {{.Data.User.Email}}
Password: {{.Data.Password}}

Please sign in at {{.FrontendBaseURL}}/login and change your password.
`,
		},
		"admission-approved": {
			".txt": `Hi {{.Data.User.Name}},

Your admission has been approved. Your student ID is {{.Data.User.StudentID.String}}.

You can now sign in at {{.FrontendBaseURL}}/login.
`,
		},
		"admission-rejected": {
			".txt": `Hi {{.Data.User.Name}},

We are sorry to inform you that your admission application was not successful.
`,
		},
		"password-reset": {
			".txt": `Hi {{.Data.User.Name}},

You requested a password reset. Follow the link below to set a new password:

{{.FrontendBaseURL}}/password-reset/{{.Data.UID}}/{{.Data.Token}}

If you did not request this, you can safely ignore this email.
`,
		},
	})
}
