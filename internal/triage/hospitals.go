package triage

// DirectoryTitle heads the emergency contact list.
const DirectoryTitle = "Emergency Contact Numbers (India)"

type Hospital struct {
	Name    string `json:"name"`
	Contact string `json:"contact"`
}

var hospitals = []Hospital{
	{Name: "AIIMS Delhi", Contact: "+91-11-26588500"},
	{Name: "Apollo Hospital, Chennai", Contact: "+91-44-28293333"},
	{Name: "Fortis Hospital, Mumbai", Contact: "+91-22-43654365"},
	{Name: "Medanta Hospital, Gurugram", Contact: "+91-124-4141414"},
	{Name: "CMC Vellore", Contact: "+91-416-2281000"},
}

// Hospitals returns the emergency directory in display order. The slice is a copy.
func Hospitals() []Hospital {
	out := make([]Hospital, len(hospitals))
	copy(out, hospitals)
	return out
}
