package extractor

import (
	einoschema "github.com/cloudwego/eino/schema"

	"resume-agent-go/internal/types"
)

// summarySectionParams 带标题子段的参数结构，摘要和工作经历共用
func summarySectionParams() *einoschema.ParameterInfo {
	return &einoschema.ParameterInfo{
		Type: einoschema.Array,
		ElemInfo: &einoschema.ParameterInfo{
			Type: einoschema.Object,
			SubParams: map[string]*einoschema.ParameterInfo{
				"title": {
					Type: einoschema.String,
					Desc: "The title of the subsection, only include explicitly labeled subsections",
				},
				"content": {
					Type:     einoschema.Array,
					ElemInfo: &einoschema.ParameterInfo{Type: einoschema.String},
					Desc:     "Bullet points or paragraphs within this subsection",
				},
			},
		},
		Desc: "Only include explicitly labeled subsections with clear titles",
	}
}

const workPeriodDesc = "MANDATORY 3-LETTER MONTH FORMAT: NEVER use full month names like 'January', 'February', etc. " +
	"ALWAYS use ONLY 3-letter abbreviations: Jan, Feb, Mar, Apr, May, Jun, Jul, Aug, Sep, Oct, Nov, Dec. " +
	"Format: 'MMM YYYY - MMM YYYY' or 'MMM YYYY - Till Date'. Use regular hyphen (-) with single spaces. " +
	"EXAMPLES: 'Jun 2024 - Sep 2025', 'Mar 2023 - Till Date'. FORBIDDEN: 'January 2024', 'February 2025', 'Sept 2024'."

const locationDesc = "CRITICAL LOCATION FORMAT RULES - EXACT FORMAT REQUIRED: Use format 'City, State/Country' with COMMA and SINGLE SPACE. " +
	"For US locations, use 2-letter state abbreviations (TX, CA, NY, FL, etc.). For international locations, use full country names. " +
	"CORRECT EXAMPLES: 'Dallas, TX', 'New York, NY', 'Hyderabad, India', 'London, UK', 'Toronto, Canada'. " +
	"The format MUST include: City name + comma + single space + State abbreviation or Country name. Never use full state names for US locations."

// headerToolInfo header角色的函数schema
func headerToolInfo() *einoschema.ToolInfo {
	return &einoschema.ToolInfo{
		Name: "extract_header_info",
		Desc: "Extract personal information and header details from resume",
		ParamsOneOf: einoschema.NewParamsOneOfByParams(map[string]*einoschema.ParameterInfo{
			"name": {
				Type:     einoschema.String,
				Desc:     "Full name of the person",
				Required: true,
			},
			"title": {
				Type: einoschema.String,
				Desc: "Professional title of the person",
			},
			"requisitionNumber": {
				Type: einoschema.String,
				Desc: "Requisition number if mentioned in the resume",
			},
		}),
	}
}

// summaryToolInfo summary角色的函数schema
func summaryToolInfo() *einoschema.ToolInfo {
	return &einoschema.ToolInfo{
		Name: "extract_professional_summary",
		Desc: "Extract professional summary, career overview, and profile sections",
		ParamsOneOf: einoschema.NewParamsOneOfByParams(map[string]*einoschema.ParameterInfo{
			"professionalSummary": {
				Type:     einoschema.Array,
				ElemInfo: &einoschema.ParameterInfo{Type: einoschema.String},
				Desc: "Array of professional summary paragraphs and bullet points exactly as written. " +
					"Each paragraph or bullet point should be a separate array item. Include EVERY point without exception.",
				Required: true,
			},
			"summarySections": summarySectionParams(),
		}),
	}
}

// experienceToolInfo experience角色的函数schema
func experienceToolInfo() *einoschema.ToolInfo {
	projectParams := &einoschema.ParameterInfo{
		Type: einoschema.Array,
		ElemInfo: &einoschema.ParameterInfo{
			Type: einoschema.Object,
			SubParams: map[string]*einoschema.ParameterInfo{
				"projectName": {
					Type: einoschema.String,
					Desc: "Format as 'Project N: ProjectTitle/ Role' where N is descending number with the most recent project having the highest number. " +
						"Example: 'Project 4: RWE Datacenter-Transition/ Senior Database Administrator'",
				},
				"projectLocation": {
					Type: einoschema.String,
					Desc: "Location where this specific project was performed, if explicitly mentioned. Use same format as job location: 'City, State/Country'.",
				},
				"projectResponsibilities": {
					Type:     einoschema.Array,
					ElemInfo: &einoschema.ParameterInfo{Type: einoschema.String},
					Desc:     "List of responsibilities and achievements specific to this project",
				},
				"keyTechnologies": {
					Type: einoschema.String,
					Desc: "Technologies, tools, and skills used in this specific project",
				},
				"period": {
					Type: einoschema.String,
					Desc: workPeriodDesc,
				},
			},
		},
		Desc: "CRITICAL: ONLY include this field if the resume explicitly mentions specific named projects for this job. " +
			"If no projects are mentioned, return an empty array []. DO NOT create or invent projects.",
	}

	return &einoschema.ToolInfo{
		Name: "extract_employment_history",
		Desc: "Extract complete employment history with all job details",
		ParamsOneOf: einoschema.NewParamsOneOfByParams(map[string]*einoschema.ParameterInfo{
			"employmentHistory": {
				Type: einoschema.Array,
				ElemInfo: &einoschema.ParameterInfo{
					Type: einoschema.Object,
					SubParams: map[string]*einoschema.ParameterInfo{
						"companyName": {
							Type: einoschema.String,
							Desc: "Name of the company. If clients are mentioned, format as 'CompanyName (Client1, Client2, Client3)' with all client names separated by commas",
						},
						"roleName": {
							Type: einoschema.String,
							Desc: "Job title or role",
						},
						"workPeriod": {
							Type: einoschema.String,
							Desc: workPeriodDesc,
						},
						"location": {
							Type: einoschema.String,
							Desc: locationDesc,
						},
						"projects": projectParams,
						"responsibilities": {
							Type:     einoschema.Array,
							ElemInfo: &einoschema.ParameterInfo{Type: einoschema.String},
							Desc: "CRITICAL: If projects exist for this job, leave this array EMPTY. " +
								"Only include responsibilities when NO projects are mentioned for this job.",
						},
						"keyTechnologies": {
							Type: einoschema.String,
							Desc: "CRITICAL: If projects exist for this job, leave this field EMPTY. Only include technologies when NO projects are mentioned for this job.",
						},
						"subsections": summarySectionParams(),
					},
				},
				Desc: "MANDATORY: Complete employment history with ALL jobs and details preserved exactly as written. " +
					"Every single job entry MUST be included - missing even one job is unacceptable.",
				Required: true,
			},
		}),
	}
}

// educationToolInfo education角色的函数schema
func educationToolInfo() *einoschema.ToolInfo {
	return &einoschema.ToolInfo{
		Name: "extract_education_history",
		Desc: "Extract complete education history and academic qualifications with mandatory degree standardization and proper sorting.",
		ParamsOneOf: einoschema.NewParamsOneOfByParams(map[string]*einoschema.ParameterInfo{
			"education": {
				Type: einoschema.Array,
				ElemInfo: &einoschema.ParameterInfo{
					Type: einoschema.Object,
					SubParams: map[string]*einoschema.ParameterInfo{
						"degree": {
							Type: einoschema.String,
							Desc: "MANDATORY DEGREE STANDARDIZATION - Convert degrees to standard abbreviations: " +
								"BTech/BE/BCom/BA/Bachelor → 'BS', MTech/ME/Master → 'MS', MBA → 'MBA', MA → 'MA', MCom → 'MCom', " +
								"PhD/Doctorate → 'PhD', JD → 'JD', AA → 'AA', AS → 'AS'. " +
								"EXAMPLES: 'Bachelor of Technology' → 'BS', 'B.Tech' → 'BS', 'Master of Technology' → 'MS'.",
						},
						"areaOfStudy": {
							Type: einoschema.String,
							Desc: "Field of study or major",
						},
						"school": {
							Type: einoschema.String,
							Desc: "Educational institution name ONLY - exclude location information",
						},
						"location": {
							Type: einoschema.String,
							Desc: locationDesc + " Extract separately even if combined with school name.",
						},
						"date": {
							Type: einoschema.String,
							Desc: "Date of graduation or study period",
						},
						"wasAwarded": {
							Type: einoschema.Boolean,
							Desc: "Whether the degree was awarded it must be always 'yes', unless it is mentioned as 'no'",
						},
					},
				},
				Desc: "CRITICAL REQUIREMENTS: 1) MANDATORY SORTING: Education entries MUST be sorted in ASCENDING order by degree level (lowest degree first). " +
					"Exact order: AA/AS (lowest) → BS (bachelors) → MS/MA/MBA/MCom (masters) → PhD/JD (highest). " +
					"If multiple degrees of same level, sort by date (oldest first). " +
					"2) MANDATORY STANDARDIZATION: All bachelor's degrees (BTech/BE/BCom/BA/Bachelor) MUST become 'BS'. " +
					"All technical master's degrees (MTech/ME/Master) MUST become 'MS'. Keep MBA, MA, MCom, PhD, JD, AA, AS as-is. NO EXCEPTIONS.",
				Required: true,
			},
		}),
	}
}

// skillsToolInfo skills角色的函数schema
func skillsToolInfo() *einoschema.ToolInfo {
	return &einoschema.ToolInfo{
		Name: "extract_technical_skills",
		Desc: "Extract technical skills, competencies, and skill categories with MANDATORY hierarchical structure preservation",
		ParamsOneOf: einoschema.NewParamsOneOfByParams(map[string]*einoschema.ParameterInfo{
			"technicalSkills": {
				Type: einoschema.Object,
				Desc: "Technical skills grouped by categories exactly as shown in resume",
			},
			"skillCategories": {
				Type: einoschema.Array,
				ElemInfo: &einoschema.ParameterInfo{
					Type: einoschema.Object,
					SubParams: map[string]*einoschema.ParameterInfo{
						"categoryName": {Type: einoschema.String},
						"skills": {
							Type:     einoschema.Array,
							ElemInfo: &einoschema.ParameterInfo{Type: einoschema.String},
						},
						"subCategories": {
							Type: einoschema.Array,
							ElemInfo: &einoschema.ParameterInfo{
								Type: einoschema.Object,
								SubParams: map[string]*einoschema.ParameterInfo{
									"name": {Type: einoschema.String},
									"skills": {
										Type:     einoschema.Array,
										ElemInfo: &einoschema.ParameterInfo{Type: einoschema.String},
									},
								},
							},
						},
					},
				},
				Desc: "MANDATORY: Preserve hierarchical structure exactly as written. When skills are grouped under main headings, " +
					"create nested structure: main heading becomes categoryName, items under it become subCategories. " +
					"Never create separate categories for items that belong under a main heading.",
			},
		}),
	}
}

// certificationsToolInfo certifications角色的函数schema
func certificationsToolInfo() *einoschema.ToolInfo {
	return &einoschema.ToolInfo{
		Name: "extract_certifications",
		Desc: "Extract certifications, licenses, and professional credentials",
		ParamsOneOf: einoschema.NewParamsOneOfByParams(map[string]*einoschema.ParameterInfo{
			"certifications": {
				Type: einoschema.Array,
				ElemInfo: &einoschema.ParameterInfo{
					Type: einoschema.Object,
					SubParams: map[string]*einoschema.ParameterInfo{
						"name":                {Type: einoschema.String, Desc: "Name of the certification"},
						"issuedBy":            {Type: einoschema.String, Desc: "Organization that issued the certification"},
						"dateObtained":        {Type: einoschema.String, Desc: "Date when certification was obtained"},
						"certificationNumber": {Type: einoschema.String, Desc: "Certification ID or number if available"},
						"expirationDate":      {Type: einoschema.String, Desc: "Expiration date if applicable"},
					},
				},
				Desc:     "All certifications with details preserved exactly as written. Only extract explicitly mentioned certifications.",
				Required: true,
			},
		}),
	}
}

// agentToolInfo 返回角色对应的函数schema
func agentToolInfo(agentType types.AgentType) *einoschema.ToolInfo {
	switch agentType {
	case types.AgentHeader:
		return headerToolInfo()
	case types.AgentSummary:
		return summaryToolInfo()
	case types.AgentExperience:
		return experienceToolInfo()
	case types.AgentEducation:
		return educationToolInfo()
	case types.AgentSkills:
		return skillsToolInfo()
	case types.AgentCertifications:
		return certificationsToolInfo()
	default:
		return nil
	}
}
