package resume

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const scenarioResume = `## Professional Summary
Results-driven engineer with 8 years building distributed systems.

## Experience
### Staff Engineer | Acme Corp | January 2021 - Present
- Led migration of 40 services to a new platform, cutting latency 30%
- Mentored 5 engineers — promoted 2025

## Education
...
`

func TestParse_Scenario(t *testing.T) {
	parsed := Parse(scenarioResume)

	assert.Equal(t, "Results-driven engineer with 8 years building distributed systems.", parsed.Summary)
	require.Len(t, parsed.Positions, 1)
	assert.Equal(t, ParsedPosition{
		Title:   "Staff Engineer",
		Company: "Acme Corp",
		Dates:   "January 2021 - Present",
		Bullets: []string{
			"Led migration of 40 services to a new platform, cutting latency 30%",
			"Mentored 5 engineers - promoted 2025",
		},
	}, parsed.Positions[0])
}

func TestParse_Idempotent(t *testing.T) {
	inputs := []string{
		scenarioResume,
		"",
		"garbage\n\n### | |\n- x",
		"## Experience\n### A | B | 2020 – 2021\n- Built things quickly\n- Built things quickly\nAcme Corp\n2020 - 2021\n",
	}

	for _, input := range inputs {
		first, err := json.Marshal(Parse(input))
		require.NoError(t, err)
		second, err := json.Marshal(Parse(input))
		require.NoError(t, err)
		assert.Equal(t, string(first), string(second))
	}
}

func TestParse_DashNormalization(t *testing.T) {
	input := strings.Join([]string{
		"## Experience",
		"### Engineer | Initech | March 2018 – December 2020",
		"- Cut build times from 20 — 5 minutes",
		"- Reduced costs by 10‒15% across teams",
		"### Lead | Globex | 2015 — 2018",
		"- Owned the pricing service end―to―end",
	}, "\n")

	parsed := Parse(input)

	require.Len(t, parsed.Positions, 2)
	for _, position := range parsed.Positions {
		assert.NotContains(t, position.Dates, "—")
		assert.NotContains(t, position.Dates, "–")
		for _, bullet := range position.Bullets {
			assert.NotContains(t, bullet, "—")
			assert.NotContains(t, bullet, "–")
		}
	}
	assert.Equal(t, "March 2018 - December 2020", parsed.Positions[0].Dates)
	assert.Equal(t, "2015 - 2018", parsed.Positions[1].Dates)
	assert.Equal(t, "Cut build times from 20 - 5 minutes", parsed.Positions[0].Bullets[0])
}

func TestParse_CoverageLowerBound(t *testing.T) {
	for n := 1; n <= 6; n++ {
		t.Run(fmt.Sprintf("%d positions", n), func(t *testing.T) {
			var b strings.Builder
			b.WriteString("## Experience\n")
			for i := 0; i < n; i++ {
				fmt.Fprintf(&b, "### Title %d | Company %d | 20%02d - 20%02d\n", i, i, i, i+1)
				fmt.Fprintf(&b, "- Delivered project number %d on time\n", i)
				b.WriteString("Company restated on its own line\n")
			}

			parsed := Parse(b.String())

			require.Len(t, parsed.Positions, n)
			for i, position := range parsed.Positions {
				assert.Equal(t, fmt.Sprintf("Title %d", i), position.Title)
				assert.Equal(t, fmt.Sprintf("Company %d", i), position.Company)
			}
		})
	}
}

func TestParse_BulletSignificance(t *testing.T) {
	tests := []struct {
		bullet string
		kept   bool
	}{
		{"", false},
		{"a", false},
		{"abcd", false},
		{"**ab**", false},
		{"abcde", false},
		{"abcdef", true},
		{"Shipped v2", true},
		{"—", false},
	}

	for _, tt := range tests {
		t.Run(tt.bullet, func(t *testing.T) {
			parsed := Parse("## Experience\n### Engineer | Acme | 2020 - 2021\n- " + tt.bullet + "\n")

			require.Len(t, parsed.Positions, 1)
			if tt.kept {
				assert.Len(t, parsed.Positions[0].Bullets, 1)
			} else {
				assert.Empty(t, parsed.Positions[0].Bullets)
			}
		})
	}
}

func TestParse_BulletWithoutPositionDropped(t *testing.T) {
	parsed := Parse("## Experience\n- Orphan bullet with plenty of text\n### Engineer | Acme | 2020\n- Real bullet text here\n")

	require.Len(t, parsed.Positions, 1)
	assert.Equal(t, []string{"Real bullet text here"}, parsed.Positions[0].Bullets)
}

func TestParse_BulletMarkersAndEmphasis(t *testing.T) {
	input := strings.Join([]string{
		"## Experience",
		"### Engineer | Acme | 2020 - 2021",
		"- **Led** the platform rewrite",
		"* Built the CI pipeline in Go",
		"• Hired four engineers",
		"+ Ran the on-call rotation",
		"  - Indented bullet still counts",
	}, "\n")

	parsed := Parse(input)

	require.Len(t, parsed.Positions, 1)
	assert.Equal(t, []string{
		"Led the platform rewrite",
		"Built the CI pipeline in Go",
		"Hired four engineers",
		"Ran the on-call rotation",
		"Indented bullet still counts",
	}, parsed.Positions[0].Bullets)
}

func TestParse_DuplicateBulletsSuppressed(t *testing.T) {
	input := "## Experience\n### A | B | 2020\n- Built the billing system\n- Built the billing system\n- Built the **billing** system\n### C | D | 2019\n- Built the billing system\n"

	parsed := Parse(input)

	require.Len(t, parsed.Positions, 2)
	assert.Equal(t, []string{"Built the billing system"}, parsed.Positions[0].Bullets)
	assert.Equal(t, []string{"Built the billing system"}, parsed.Positions[1].Bullets)
}

func TestParse_StrayLinesDiscarded(t *testing.T) {
	input := strings.Join([]string{
		"## Experience",
		"### Staff Engineer | Acme Corp | January 2021 - Present",
		"Acme Corp",
		"January 2021 - Present",
		"This is a long stray paragraph that the model wrote outside of any bullet marker at all.",
		"---",
		"- Led migration of 40 services",
	}, "\n")

	parsed := Parse(input)

	require.Len(t, parsed.Positions, 1)
	assert.Equal(t, []string{"Led migration of 40 services"}, parsed.Positions[0].Bullets)
}

func TestParse_SectionBoundary(t *testing.T) {
	input := strings.Join([]string{
		"## Summary",
		"Builder of reliable distributed platforms.",
		"## Experience",
		"### Engineer | Acme | 2020 - 2021",
		"- Shipped the search service",
		"## Education",
		"Summary of something long enough to count",
		"## Professional Summary",
		"This should never appear in the summary text.",
		"## Experience",
		"### Hidden | Nowhere | 2000",
		"- This bullet must not appear anywhere",
	}, "\n")

	parsed := Parse(input)

	assert.Equal(t, "Builder of reliable distributed platforms.", parsed.Summary)
	require.Len(t, parsed.Positions, 1)
	assert.Equal(t, []string{"Shipped the search service"}, parsed.Positions[0].Bullets)
}

func TestParse_SummaryFallback(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty input", ""},
		{"no summary heading", "## Experience\n### Engineer | Acme | 2020\n- Shipped the search service\n"},
		{"summary with only short lines", "## Summary\nshort\n2019 - 2021\n## Experience\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parsed := Parse(tt.input)
			assert.Equal(t, FallbackSummary, parsed.Summary)
			assert.NotEmpty(t, parsed.Summary)
		})
	}
}

func TestParse_SummaryJoinsLinesAndRejectsDates(t *testing.T) {
	input := strings.Join([]string{
		"# Jordan Example",
		"jordan@example.com | Austin, TX",
		"## **PROFESSIONAL SUMMARY**",
		"Platform engineer focused on developer experience.",
		"2015 - 2024",
		"(2019 – Present)",
		"Ten years — across three startups.",
		"## Experience",
	}, "\n")

	parsed := Parse(input)

	assert.Equal(t, "Platform engineer focused on developer experience. Ten years - across three startups.", parsed.Summary)
	assert.Empty(t, parsed.Positions)
}

func TestParse_SummaryWithoutExperienceHeading(t *testing.T) {
	parsed := Parse("## Summary\nPlatform engineer focused on developer experience.\n## Skills\n")

	assert.Equal(t, "Platform engineer focused on developer experience.", parsed.Summary)
}

func TestParse_TwoFieldHeader(t *testing.T) {
	parsed := Parse("## Experience\n### Title | Company\n- Did something notable\n")

	require.Len(t, parsed.Positions, 1)
	assert.Equal(t, "Title", parsed.Positions[0].Title)
	assert.Equal(t, "Company", parsed.Positions[0].Company)
	assert.Equal(t, "", parsed.Positions[0].Dates)
}

func TestParse_HeaderVariants(t *testing.T) {
	input := strings.Join([]string{
		"## EXPERIENCE",
		"**Staff Engineer | Acme Corp | January 2021 - Present**",
		"- Led migration of 40 services",
		"### **Senior Engineer** | Globex | 2017 - 2020 | Remote",
		"- Built the billing pipeline",
		"### Consultant",
		"- Advised three clients on cloud cost",
	}, "\n")

	parsed := Parse(input)

	require.Len(t, parsed.Positions, 3)
	assert.Equal(t, "Staff Engineer", parsed.Positions[0].Title)
	assert.Equal(t, "January 2021 - Present", parsed.Positions[0].Dates)
	assert.Equal(t, "Senior Engineer", parsed.Positions[1].Title)
	assert.Equal(t, "2017 - 2020", parsed.Positions[1].Dates)
	assert.Equal(t, "Consultant", parsed.Positions[2].Title)
	assert.Equal(t, "", parsed.Positions[2].Company)
}

func TestParse_MissingExperienceHeading(t *testing.T) {
	input := "## Professional Summary\nSeasoned engineer who ships.\n### Engineer | Acme | 2020 - 2021\n- Shipped the search service\n"

	parsed := Parse(input)

	assert.Equal(t, "Seasoned engineer who ships.", parsed.Summary)
	require.Len(t, parsed.Positions, 1)
	assert.Equal(t, "Acme", parsed.Positions[0].Company)
}

func TestParse_UnknownSectionEndsPosition(t *testing.T) {
	input := "## Experience\n### Engineer | Acme | 2020\n- Shipped the search service\n## Skills\n- Go, Kubernetes, Terraform\n"

	parsed := Parse(input)

	require.Len(t, parsed.Positions, 1)
	assert.Equal(t, []string{"Shipped the search service"}, parsed.Positions[0].Bullets)
}

func TestParse_CRLF(t *testing.T) {
	parsed := Parse(strings.ReplaceAll(scenarioResume, "\n", "\r\n"))

	require.Len(t, parsed.Positions, 1)
	assert.Len(t, parsed.Positions[0].Bullets, 2)
}

func TestParse_EmptyCollectionsMarshal(t *testing.T) {
	data, err := json.Marshal(Parse("## Experience\n### Engineer | Acme\n"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"summary": "`+FallbackSummary+`", "positions": [{"title": "Engineer", "company": "Acme", "dates": "", "bullets": []}]}`, string(data))
}

func TestParse_NearMissExperienceHeadings(t *testing.T) {
	headings := []string{
		"## Leadership Experience",
		"## Experience Highlights",
		"## Career History",
		"## Employment",
		"**Relevant Industry Experience**",
		"## Selected Projects",
	}

	for _, heading := range headings {
		t.Run(heading, func(t *testing.T) {
			input := heading + "\n### Staff Engineer | Acme Corp | 2021 - Present\n- Led migration of 40 services\n"

			parsed := Parse(input)

			require.Len(t, parsed.Positions, 1)
			assert.Equal(t, "Acme Corp", parsed.Positions[0].Company)
			assert.Equal(t, []string{"Led migration of 40 services"}, parsed.Positions[0].Bullets)
		})
	}
}

func TestParse_ExperienceWordInProseIsNotHeading(t *testing.T) {
	input := strings.Join([]string{
		"## Summary",
		"Platform engineer with deep experience in distributed systems.",
		"## Experience",
		"### Director of Customer Experience",
		"- Rebuilt the support escalation process",
	}, "\n")

	parsed := Parse(input)

	assert.Equal(t, "Platform engineer with deep experience in distributed systems.", parsed.Summary)
	require.Len(t, parsed.Positions, 1)
	assert.Equal(t, "Director of Customer Experience", parsed.Positions[0].Title)
}

func TestParse_BulletTextKeepsCompatibilityCharacters(t *testing.T) {
	input := "## Experience\n### Engineer | Acme | 2020\n- Cut office footprint to 900 m² with Widget™ rollout\n- Reduced cost by ½ in one quarter\n"

	parsed := Parse(input)

	require.Len(t, parsed.Positions, 1)
	assert.Equal(t, []string{
		"Cut office footprint to 900 m² with Widget™ rollout",
		"Reduced cost by ½ in one quarter",
	}, parsed.Positions[0].Bullets)
}
