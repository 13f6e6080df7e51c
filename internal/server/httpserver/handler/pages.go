package handler

import (
	"fmt"
	"html/template"
)

// pageData is the model every decoy template renders.
type pageData struct {
	Title string
	Token string
	Error bool

	Patients      []Patient
	Patient       Patient
	Appointments  []Appointment
	Prescriptions []Prescription
	Staff         []staffAccount
	Backups       []backupEntry
}

// TokenComment returns the HTML comment carrying the page's honeytoken.
// html/template drops comments written in templates, so it is emitted as
// trusted HTML. Token ids are canonical UUIDs.
func (p pageData) TokenComment() template.HTML {
	if p.Token == "" {
		return ""
	}
	return template.HTML(fmt.Sprintf("<!-- Hidden honeytoken -->\n<!-- Honeytoken: %s -->", p.Token))
}

const layoutTemplate = `<!DOCTYPE html>
<html>
<head>
<title>{{.Title}} - Healthcare System</title>
<style>
body { font-family: Arial, sans-serif; margin: 0; padding: 20px; }
h1 { color: #0056b3; }
nav a { margin-right: 12px; }
table { border-collapse: collapse; width: 100%; }
th, td { border: 1px solid #ddd; padding: 8px; text-align: left; }
.error { color: red; }
</style>
</head>
<body>
<h1>Healthcare System Portal</h1>
{{template "nav" .}}
{{template "content" .}}
{{if .Token}}<a href="/honeytoken?token={{.Token}}" style="display:none" aria-hidden="true" tabindex="-1">Archived records</a>{{end}}
{{.TokenComment}}
</body>
</html>
`

const navTemplate = `{{define "nav"}}<nav>
<a href="/dashboard">Dashboard</a>
<a href="/patients">Patients</a>
<a href="/appointments">Appointments</a>
<a href="/prescriptions">Prescriptions</a>
<a href="/">Logout</a>
</nav>{{end}}`

var pageTemplates = map[string]string{
	"home": `{{define "nav"}}{{end}}{{define "content"}}
<h2>Welcome</h2>
<p>Authorized staff only. All activity is monitored.</p>
<a href="/login">Go to Login</a>
{{end}}`,

	"login": `{{define "nav"}}{{end}}{{define "content"}}
<h2>Login</h2>
{{if .Error}}<p class="error">Invalid username or password</p>{{end}}
<form method="post" action="/login">
<label for="username">Username:</label>
<input type="text" id="username" name="username" required>
<label for="password">Password:</label>
<input type="password" id="password" name="password" required>
<button type="submit">Login</button>
</form>
{{end}}`,

	"dashboard": `{{define "content"}}
<h2>Dashboard</h2>
<ul>
<li>Patients: {{len .Patients}}</li>
<li>Appointments: {{len .Appointments}}</li>
<li>Active prescriptions: {{len .Prescriptions}}</li>
</ul>
<p><a href="/admin">Admin Panel</a></p>
{{end}}`,

	"patients": `{{define "content"}}
<h2>Patient Records</h2>
<table>
<thead><tr><th>ID</th><th>Name</th><th>DOB</th><th>Diagnosis</th><th>Doctor</th></tr></thead>
<tbody>
{{range .Patients}}<tr><td><a href="/patient/{{.ID}}">{{.ID}}</a></td><td>{{.Name}}</td><td>{{.DOB}}</td><td>{{.Diagnosis}}</td><td>{{.Doctor}}</td></tr>
{{end}}</tbody>
</table>
{{end}}`,

	"patient": `{{define "content"}}
{{with .Patient}}<h2>{{.Name}}</h2>
<table>
<tr><th>Patient ID</th><td>{{.ID}}</td></tr>
<tr><th>Date of Birth</th><td>{{.DOB}}</td></tr>
<tr><th>SSN</th><td>{{.SSN}}</td></tr>
<tr><th>Diagnosis</th><td>{{.Diagnosis}}</td></tr>
<tr><th>Medications</th><td>{{range $i, $m := .Medications}}{{if $i}}, {{end}}{{$m}}{{end}}</td></tr>
<tr><th>Doctor</th><td>{{.Doctor}}</td></tr>
<tr><th>Last Visit</th><td>{{.LastVisit}}</td></tr>
</table>{{end}}
{{end}}`,

	"appointments": `{{define "content"}}
<h2>Appointments</h2>
<table>
<thead><tr><th>ID</th><th>Patient</th><th>Date</th><th>Time</th><th>Doctor</th><th>Reason</th></tr></thead>
<tbody>
{{range .Appointments}}<tr><td>{{.ID}}</td><td><a href="/patient/{{.PatientID}}">{{.PatientName}}</a></td><td>{{.Date}}</td><td>{{.Time}}</td><td>{{.Doctor}}</td><td>{{.Reason}}</td></tr>
{{end}}</tbody>
</table>
{{end}}`,

	"prescriptions": `{{define "content"}}
<h2>Prescriptions</h2>
<table>
<thead><tr><th>ID</th><th>Patient</th><th>Medication</th><th>Dosage</th><th>Frequency</th><th>Prescribed</th><th>Refills</th></tr></thead>
<tbody>
{{range .Prescriptions}}<tr><td>{{.ID}}</td><td>{{.PatientName}}</td><td>{{.Medication}}</td><td>{{.Dosage}}</td><td>{{.Frequency}}</td><td>{{.PrescribedDate}}</td><td>{{.Refills}}</td></tr>
{{end}}</tbody>
</table>
{{end}}`,

	"admin": `{{define "content"}}
<h2>Admin Control Panel</h2>
<h3>System Management</h3>
<p><a href="/backup">Database Backup</a></p>
<h3>User Accounts</h3>
<table>
<thead><tr><th>Username</th><th>Role</th><th>Last Login</th></tr></thead>
<tbody>
{{range .Staff}}<tr><td>{{.Username}}</td><td>{{.Role}}</td><td>{{.LastLogin}}</td></tr>
{{end}}</tbody>
</table>
<h3>System Information</h3>
<ul>
<li>System Version: MediCare Plus v1.2.3</li>
<li>Database: MySQL 5.6.24</li>
<li>Server: Apache 2.4.12</li>
</ul>
{{end}}`,

	"backup": `{{define "content"}}
<h2>System Backup</h2>
<form action="#" method="post">
<label for="backup-name">Backup Name:</label>
<input type="text" id="backup-name" name="backup-name" value="backup_20231015" required>
<input type="checkbox" id="include-patient-data" name="include-patient-data" checked>
<label for="include-patient-data">Include Patient Data</label>
<button type="submit">Start Backup</button>
</form>
<h3>Previous Backups</h3>
<table>
<thead><tr><th>Name</th><th>Created</th><th>Size</th></tr></thead>
<tbody>
{{range .Backups}}<tr><td>{{.Name}}</td><td>{{.Created}}</td><td>{{.Size}}</td></tr>
{{end}}</tbody>
</table>
{{end}}`,

	"notfound": `{{define "nav"}}{{end}}{{define "content"}}
<h2>404 - Page Not Found</h2>
<p>The page you requested could not be found.</p>
<a href="/">Return to Home</a>
{{end}}`,
}

// parsePages builds one template set per page. Pages that define their own
// "nav" replace the shared one.
func parsePages() (map[string]*template.Template, error) {
	base, err := template.New("layout").Parse(layoutTemplate)
	if err != nil {
		return nil, err
	}
	if _, err := base.Parse(navTemplate); err != nil {
		return nil, err
	}

	pages := make(map[string]*template.Template, len(pageTemplates))
	for name, body := range pageTemplates {
		t, err := base.Clone()
		if err != nil {
			return nil, err
		}
		if _, err := t.Parse(body); err != nil {
			return nil, fmt.Errorf("page %s: %w", name, err)
		}
		pages[name] = t
	}
	return pages, nil
}
