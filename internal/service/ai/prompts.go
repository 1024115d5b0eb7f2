package ai

import (
	"fmt"
	"strings"

	"github.com/dmaguire/folio/backend/pkg/model/profile"
	"github.com/dmaguire/folio/backend/internal/stream"
)

func systemPrompt(flavor stream.Flavor, snapshot *profile.Snapshot, opts PromptOptions) string {
	switch flavor.Name {
	case stream.ContentBuilder.Name:
		return contentBuilderPrompt(snapshot)
	case stream.Practice.Name:
		return practicePrompt(snapshot, opts)
	case stream.ResumeGen.Name:
		return resumePrompt(snapshot, opts)
	default:
		return "You are a helpful assistant for a personal portfolio site." + profileSection(snapshot)
	}
}

func contentBuilderPrompt(snapshot *profile.Snapshot) string {
	var sb strings.Builder
	sb.WriteString(`You help the portfolio owner add resume data through conversation.
When the user describes experience, skills, projects, education, or similar,
stage it as structured content. Reply conversationally, and for each item you
stage include exactly one fenced block of the form:

` + "```json" + `
{"action":"content_ready","content":{"type":"<type>","data":{...}}}
` + "```" + `

Valid types: position, accomplishment, skill, technology, project, education,
certification, company. Use "content_draft" instead of "content_ready" when
details are missing, and list what you still need in
"content.clarificationNeeded". If an item looks like it already exists in the
profile below, set "content.duplicateWarning" to a short note instead of
refusing. Never put the JSON block inside quotes and never emit more than one
item per block.`)
	sb.WriteString(profileSection(snapshot))
	return sb.String()
}

func practicePrompt(snapshot *profile.Snapshot, opts PromptOptions) string {
	var sb strings.Builder
	sb.WriteString(`You are an interview coach. The candidate answers practice
interview questions; you assess each answer. Reply with a short spoken-style
assessment first, then exactly one fenced block with the scorecard:

` + "```json" + `
{"overallScore":0-10,"strengths":[],"improvements":[],"structureScore":0-10,
"relevanceScore":0-10,"clarityScore":0-10,"starMethodUsed":false,
"suggestions":[],"revisedAnswer":""}
` + "```" + `

Score against the candidate's real background below so feedback is grounded
in their actual experience.`)
	if opts.QuestionID != "" {
		sb.WriteString(fmt.Sprintf("\n\nThe current question id is %s.", opts.QuestionID))
	}
	sb.WriteString(profileSection(snapshot))
	return sb.String()
}

func resumePrompt(snapshot *profile.Snapshot, opts PromptOptions) string {
	var sb strings.Builder
	sb.WriteString(`You generate tailored resumes from the candidate's profile
below. Discuss choices briefly in prose, then emit the full resume as exactly
one fenced block:

` + "```json" + `
{"contact":{},"summary":"","experience":[{"title":"","company":"",
"startDate":"","endDate":"","bullets":[]}],"skills":{"technical":[],
"tools":[],"soft":[]},"education":[],"certifications":[],"projects":[]}
` + "```" + `

Only use facts from the profile; never invent employers, dates, or degrees.`)
	if opts.TargetRole != "" {
		sb.WriteString(fmt.Sprintf("\n\nTarget role: %s.", opts.TargetRole))
	}
	if opts.TargetCompany != "" {
		sb.WriteString(fmt.Sprintf("\nTarget company: %s.", opts.TargetCompany))
	}
	if opts.JobDescription != "" {
		sb.WriteString("\n\nJob description:\n\"\"\"\n")
		sb.WriteString(opts.JobDescription)
		sb.WriteString("\n\"\"\"")
	}
	sb.WriteString(profileSection(snapshot))
	return sb.String()
}

func questionPrompt(snapshot *profile.Snapshot, targetRole, jobDescription string, count int) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`You prepare candidates for interviews. Produce %d
interview questions tailored to the candidate's background below. Return ONLY
a JSON array of question strings, no markdown, no commentary.`, count))
	if targetRole != "" {
		sb.WriteString(fmt.Sprintf("\n\nTarget role: %s.", targetRole))
	}
	if jobDescription != "" {
		sb.WriteString("\n\nJob description:\n\"\"\"\n")
		sb.WriteString(jobDescription)
		sb.WriteString("\n\"\"\"")
	}
	sb.WriteString(profileSection(snapshot))
	return sb.String()
}

// profileSection renders the cached CMS snapshot as prompt context. An empty
// or missing snapshot renders nothing so the features degrade instead of
// failing.
func profileSection(snapshot *profile.Snapshot) string {
	if snapshot == nil {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("\n\nCandidate profile:\n")

	if len(snapshot.Positions) > 0 {
		sb.WriteString("\nPositions:\n")
		for _, p := range snapshot.Positions {
			sb.WriteString(fmt.Sprintf("- %s at %s (%s – %s)\n", p.Title, p.Company, orPresent(p.StartDate), orPresent(p.EndDate)))
			if p.Summary != "" {
				sb.WriteString("  " + p.Summary + "\n")
			}
			for _, a := range p.Accomplishments {
				sb.WriteString("  * " + a + "\n")
			}
		}
	}
	if len(snapshot.Skills) > 0 {
		names := make([]string, 0, len(snapshot.Skills))
		for _, s := range snapshot.Skills {
			names = append(names, s.Name)
		}
		sb.WriteString("\nSkills: " + strings.Join(names, ", ") + "\n")
	}
	if len(snapshot.Technologies) > 0 {
		names := make([]string, 0, len(snapshot.Technologies))
		for _, t := range snapshot.Technologies {
			names = append(names, t.Name)
		}
		sb.WriteString("Technologies: " + strings.Join(names, ", ") + "\n")
	}
	if len(snapshot.Projects) > 0 {
		sb.WriteString("\nProjects:\n")
		for _, p := range snapshot.Projects {
			sb.WriteString("- " + p.Name)
			if p.Description != "" {
				sb.WriteString(": " + p.Description)
			}
			sb.WriteString("\n")
		}
	}
	if len(snapshot.Education) > 0 {
		sb.WriteString("\nEducation:\n")
		for _, e := range snapshot.Education {
			sb.WriteString(fmt.Sprintf("- %s, %s %s (%s)\n", e.Institution, e.Degree, e.Field, e.EndYear))
		}
	}
	if len(snapshot.Certifications) > 0 {
		sb.WriteString("\nCertifications:\n")
		for _, c := range snapshot.Certifications {
			sb.WriteString(fmt.Sprintf("- %s (%s, %s)\n", c.Name, c.Issuer, c.Year))
		}
	}
	return sb.String()
}

func orPresent(date string) string {
	if date == "" {
		return "present"
	}
	return date
}
