package seed

import "github.com/kilianp07/procsched/core/model"

// Diagnoses is the sample ICD-10 catalogue.
var Diagnoses = []model.Diagnosis{
	{ICDCode: "I10", Description: "Essential (primary) hypertension", Severity: 2},
	{ICDCode: "E11.9", Description: "Type 2 diabetes mellitus without complications", Severity: 3},
	{ICDCode: "J45.909", Description: "Unspecified asthma, uncomplicated", Severity: 3},
	{ICDCode: "M54.5", Description: "Low back pain", Severity: 2},
	{ICDCode: "F41.9", Description: "Anxiety disorder, unspecified", Severity: 2},
	{ICDCode: "F32.9", Description: "Major depressive disorder, single episode, unspecified", Severity: 3},
	{ICDCode: "J02.9", Description: "Acute pharyngitis, unspecified", Severity: 1},
	{ICDCode: "N39.0", Description: "Urinary tract infection, site not specified", Severity: 2},
	{ICDCode: "K21.9", Description: "Gastro-esophageal reflux disease without esophagitis", Severity: 2},
	{ICDCode: "R51", Description: "Headache", Severity: 1},
	{ICDCode: "J06.9", Description: "Acute upper respiratory infection, unspecified", Severity: 1},
	{ICDCode: "H66.90", Description: "Otitis media, unspecified, unspecified ear", Severity: 1},
	{ICDCode: "L30.9", Description: "Dermatitis, unspecified", Severity: 1},
	{ICDCode: "M25.50", Description: "Pain in unspecified joint", Severity: 2},
	{ICDCode: "R10.9", Description: "Unspecified abdominal pain", Severity: 2},
}

// CPTCodes is the sample procedure catalogue.
var CPTCodes = []model.CPTCode{
	{Code: "99213", Description: "Office/outpatient visit, established patient, 15 minutes", DurationMinutes: 15},
	{Code: "99214", Description: "Office/outpatient visit, established patient, 25 minutes", DurationMinutes: 25},
	{Code: "99215", Description: "Office/outpatient visit, established patient, 40 minutes", DurationMinutes: 40, RequiresSpecialist: true},
	{Code: "99203", Description: "Office/outpatient visit, new patient, 30 minutes", DurationMinutes: 30},
	{Code: "99204", Description: "Office/outpatient visit, new patient, 45 minutes", DurationMinutes: 45, RequiresSpecialist: true},
	{Code: "99205", Description: "Office/outpatient visit, new patient, 60 minutes", DurationMinutes: 60, RequiresSpecialist: true},
	{Code: "93000", Description: "Electrocardiogram, routine, with interpretation", DurationMinutes: 20},
	{Code: "71045", Description: "X-ray, chest, single view", DurationMinutes: 15},
	{Code: "71046", Description: "X-ray, chest, 2 views", DurationMinutes: 20},
	{Code: "80053", Description: "Comprehensive metabolic panel", DurationMinutes: 10},
	{Code: "85025", Description: "Complete blood count (CBC)", DurationMinutes: 10},
	{Code: "82607", Description: "Vitamin B-12 blood test", DurationMinutes: 10},
	{Code: "83036", Description: "Hemoglobin A1C level", DurationMinutes: 10},
	{Code: "80061", Description: "Lipid panel", DurationMinutes: 10},
	{Code: "96372", Description: "Therapeutic, prophylactic, or diagnostic injection", DurationMinutes: 15},
}

// ResourceTypes are the room kinds of an outpatient clinic.
var ResourceTypes = []string{
	"Exam Room",
	"Procedure Room",
	"X-Ray Room",
	"Lab",
	"EKG Room",
	"Consultation Room",
}

var firstNames = []string{
	"James", "Mary", "Robert", "Patricia", "John", "Jennifer", "Michael", "Linda",
	"David", "Elizabeth", "William", "Barbara", "Richard", "Susan", "Joseph", "Jessica",
	"Thomas", "Sarah", "Charles", "Karen", "Amina", "Wei", "Lucia", "Mateo",
}

var lastNames = []string{
	"Smith", "Johnson", "Williams", "Brown", "Jones", "Garcia", "Miller", "Davis",
	"Rodriguez", "Martinez", "Hernandez", "Lopez", "Gonzalez", "Wilson", "Anderson",
	"Thomas", "Taylor", "Moore", "Jackson", "Martin", "Nguyen", "Okafor", "Rossi",
}

var orderNotes = []string{
	"Follow-up requested by primary care physician",
	"Patient prefers morning appointments",
	"Fasting required before the procedure",
	"Repeat if results are inconclusive",
	"Bring previous imaging",
}
