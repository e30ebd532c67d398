package compliance

import "strings"

var requiredPhases = []string{"build", "test", "cutover"}

// CheckSchedule re-examines the Schedule pillar against the project timeline.
// Every required phase keyword must appear in the evidence and the pillar
// status must be Met. The timeline is carried for report context; phase
// presence is judged from the evidence text alone.
func CheckSchedule(result Result, timeline ProjectTimeline) ScheduleReport {
	schedule, ok := findPillar(result, "Schedule")
	if !ok {
		return ScheduleReport{
			Compliant: false,
			Issues:    []string{"Schedule pillar not found in analysis"},
			Details:   "Unable to verify schedule compliance",
		}
	}

	evidence := strings.ToLower(schedule.Evidence)

	var issues []string
	for _, phase := range requiredPhases {
		if !strings.Contains(evidence, phase) {
			issues = append(issues, titleCase(phase)+" phase not clearly defined in SOW")
		}
	}
	if schedule.Status != StatusMet {
		issues = append(issues, "Schedule pillar status: "+string(schedule.Status))
	}

	compliant := len(issues) == 0 && schedule.Status == StatusMet
	if len(issues) == 0 {
		issues = []string{"Schedule appears aligned with project timeline"}
	}

	details := schedule.Evidence
	if details == "" {
		details = "No schedule information found"
	}

	return ScheduleReport{
		Compliant: compliant,
		Issues:    issues,
		Details:   details,
		Status:    schedule.Status,
		RiskLevel: schedule.RiskLevel,
	}
}

func titleCase(word string) string {
	if word == "" {
		return word
	}
	return strings.ToUpper(word[:1]) + word[1:]
}
