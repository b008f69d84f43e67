package pilot

// Pitch is the product one-pager served for download. The document is static;
// sessions do not influence it.
type Pitch struct {
	Title           string        `json:"title"`
	ValueProp       string        `json:"value_prop"`
	Vision          string        `json:"vision"`
	Differentiation []string      `json:"differentiation"`
	Traction        PitchTraction `json:"traction"`
	Asks            []string      `json:"asks"`
	Metrics         PitchMetrics  `json:"metrics"`
	NorthStar       string        `json:"north_star"`
}

type PitchTraction struct {
	MVPStatus string `json:"MVP_status"`
	Pipeline  string `json:"pipeline"`
}

type PitchMetrics struct {
	EngagementTarget string `json:"engagement_target"`
	EfficiencyTarget string `json:"efficiency_target"`
	ClinicalTarget   string `json:"clinical_target"`
}

// PitchDocument returns the one-pager.
func PitchDocument() Pitch {
	return Pitch{
		Title:     "Viatra — Personal Health OS + Doctor Cockpit",
		ValueProp: "A smart, interoperable health platform that empowers patients with 'doctor-eyes' and gives physicians a unified cockpit. Viatra acts as a predictive, preventive, and personalized health layer on top of existing care journeys.",
		Vision:    "We are redefining healthcare from episodic and reactive to continuous, anticipatory, and data-driven.",
		Differentiation: []string{
			"Consumer module (Viatra): family health hub, personal health OS, AI-driven health interpreter",
			"Doctor module (DoctorHub): streamlined cockpit with predictive triage, patient insights, and reduced admin overhead",
			"Enterprise-ready: interoperable with EMR/EHR, designed for scalability and compliance",
		},
		Traction: PitchTraction{
			MVPStatus: "Functional demo with patient vitals, AI interpreter, and family health profiles",
			Pipeline:  "Exploring hospital pilot collaborations and user beta trials",
		},
		Asks: []string{
			"Pilot partnership with leading hospitals/clinics",
			"Seed investment to accelerate development and regulatory compliance",
			"Integration pilots with existing hospital information systems",
		},
		Metrics: PitchMetrics{
			EngagementTarget: "30% weekly active users (WAU) within 6 months",
			EfficiencyTarget: "20% reduction in physician admin load",
			ClinicalTarget:   "Improved early detection of high-risk cases by 15%",
		},
		NorthStar: "To become the anticipatory health OS — the layer where patients, families, and doctors converge seamlessly.",
	}
}
