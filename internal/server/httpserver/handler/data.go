package handler

// Patient is a fictitious patient record served as bait.
type Patient struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	DOB         string   `json:"dob"`
	SSN         string   `json:"ssn"`
	Diagnosis   string   `json:"diagnosis"`
	Medications []string `json:"medications"`
	Doctor      string   `json:"doctor"`
	LastVisit   string   `json:"last_visit"`
}

// Appointment is a fictitious appointment.
type Appointment struct {
	ID          string `json:"id"`
	PatientID   string `json:"patient_id"`
	PatientName string `json:"patient_name"`
	Date        string `json:"date"`
	Time        string `json:"time"`
	Doctor      string `json:"doctor"`
	Reason      string `json:"reason"`
}

// Prescription is a fictitious prescription.
type Prescription struct {
	ID             string `json:"id"`
	PatientID      string `json:"patient_id"`
	PatientName    string `json:"patient_name"`
	Medication     string `json:"medication"`
	Dosage         string `json:"dosage"`
	Frequency      string `json:"frequency"`
	PrescribedDate string `json:"prescribed_date"`
	Refills        int    `json:"refills"`
}

type staffAccount struct {
	Username  string
	Role      string
	LastLogin string
}

type backupEntry struct {
	Name    string
	Created string
	Size    string
}

var patients = []Patient{
	{
		ID: "P12345", Name: "John Smith", DOB: "1975-05-15", SSN: "123-45-6789",
		Diagnosis: "Hypertension", Medications: []string{"Lisinopril", "Hydrochlorothiazide"},
		Doctor: "Dr. Sarah Johnson", LastVisit: "2023-03-15",
	},
	{
		ID: "P67890", Name: "Emily Davis", DOB: "1988-11-23", SSN: "987-65-4321",
		Diagnosis: "Type 2 Diabetes", Medications: []string{"Metformin", "Glipizide"},
		Doctor: "Dr. Michael Chen", LastVisit: "2023-03-20",
	},
	{
		ID: "P24680", Name: "Michael Johnson", DOB: "1965-08-12", SSN: "456-78-9012",
		Diagnosis: "Asthma", Medications: []string{"Albuterol", "Fluticasone"},
		Doctor: "Dr. Lisa Wong", LastVisit: "2023-03-22",
	},
	{
		ID: "P13579", Name: "Sarah Williams", DOB: "1982-02-28", SSN: "789-01-2345",
		Diagnosis: "Arthritis", Medications: []string{"Ibuprofen", "Prednisone"},
		Doctor: "Dr. Robert Brown", LastVisit: "2023-03-25",
	},
}

var appointments = []Appointment{
	{"A1001", "P12345", "John Smith", "2023-03-30", "09:00", "Dr. Sarah Johnson", "Follow-up"},
	{"A1002", "P67890", "Emily Davis", "2023-03-30", "10:30", "Dr. Michael Chen", "Medication review"},
	{"A1003", "P24680", "Michael Johnson", "2023-03-30", "13:15", "Dr. Lisa Wong", "Annual checkup"},
	{"A1004", "P13579", "Sarah Williams", "2023-03-30", "15:45", "Dr. Robert Brown", "Pain management"},
	{"A1005", "P12345", "John Smith", "2023-04-15", "11:00", "Dr. Sarah Johnson", "Blood pressure check"},
}

var prescriptions = []Prescription{
	{"RX1001", "P12345", "John Smith", "Lisinopril", "10mg", "Once daily", "2023-02-15", 3},
	{"RX1002", "P12345", "John Smith", "Hydrochlorothiazide", "25mg", "Once daily", "2023-02-15", 3},
	{"RX1003", "P67890", "Emily Davis", "Metformin", "500mg", "Twice daily", "2023-03-01", 5},
	{"RX1004", "P67890", "Emily Davis", "Glipizide", "5mg", "Once daily", "2023-03-01", 5},
	{"RX1005", "P24680", "Michael Johnson", "Albuterol", "90mcg", "As needed", "2023-02-20", 2},
	{"RX1006", "P24680", "Michael Johnson", "Fluticasone", "110mcg", "Twice daily", "2023-02-20", 2},
	{"RX1007", "P13579", "Sarah Williams", "Ibuprofen", "600mg", "Every 6 hours as needed", "2023-03-10", 1},
	{"RX1008", "P13579", "Sarah Williams", "Prednisone", "10mg", "Once daily", "2023-03-10", 0},
}

var staff = []staffAccount{
	{"admin", "Administrator", "2023-10-15 08:45"},
	{"doctor", "Physician", "2023-10-14 14:22"},
	{"nurse", "Nurse", "2023-10-15 09:17"},
}

var backups = []backupEntry{
	{"backup_20231014", "2023-10-14 23:00", "2.3 GB"},
	{"backup_20231013", "2023-10-13 23:00", "2.3 GB"},
	{"backup_20231012", "2023-10-12 23:00", "2.2 GB"},
}

func findPatient(id string) (Patient, bool) {
	for _, p := range patients {
		if p.ID == id {
			return p, true
		}
	}
	return Patient{}, false
}
