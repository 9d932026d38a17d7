package types

// SectionKey 表示简历分段后的章节键
type SectionKey string

const (
	// SectionHeader 文档头部（第一个章节标题之前的内容）
	SectionHeader SectionKey = "header"
	// SectionSummary 专业摘要章节
	SectionSummary SectionKey = "summary"
	// SectionExperience 工作经历章节
	SectionExperience SectionKey = "experience"
	// SectionEducation 教育经历章节
	SectionEducation SectionKey = "education"
	// SectionSkills 技能章节
	SectionSkills SectionKey = "skills"
	// SectionCertifications 证书章节
	SectionCertifications SectionKey = "certifications"
)

// SectionMatch 章节标题在原始文本中的一次命中
type SectionMatch struct {
	SectionKey  SectionKey // 命中的章节键
	MatchedText string     // 命中时的标题行文本（已去除列表前缀）
	Start       int        // 原始文本中的起始偏移
	End         int        // 原始文本中的结束偏移
}

// SectionMap 章节键到拼接后章节文本的映射
type SectionMap map[SectionKey]string

// AgentType 表示一次抽取任务中的角色
type AgentType string

const (
	AgentHeader         AgentType = "header"
	AgentSummary        AgentType = "summary"
	AgentExperience     AgentType = "experience"
	AgentEducation      AgentType = "education"
	AgentSkills         AgentType = "skills"
	AgentCertifications AgentType = "certifications"
)

// AllAgentTypes 返回固定顺序的全部角色
func AllAgentTypes() []AgentType {
	return []AgentType{
		AgentHeader,
		AgentSummary,
		AgentExperience,
		AgentEducation,
		AgentSkills,
		AgentCertifications,
	}
}

// AgentResult 单个角色抽取的结果，失败不影响其他角色
type AgentResult struct {
	AgentType    AgentType
	Payload      *AgentPayload
	Success      bool
	ErrorMessage string
	ElapsedMs    int64
}

// AgentPayload 角色抽取的原始负载。六个角色各自只填充自己负责的字段，
// 合并时按角色做字段归属，互不覆盖。
type AgentPayload struct {
	Name                string           `json:"name"`
	Title               string           `json:"title"`
	RequisitionNumber   string           `json:"requisitionNumber"`
	ProfessionalSummary []string         `json:"professionalSummary"`
	SummarySections     []SummarySection `json:"summarySections"`
	EmploymentHistory   []JobEntry       `json:"employmentHistory"`
	Education           []EducationEntry `json:"education"`
	Certifications      []Certification  `json:"certifications"`
	TechnicalSkills     map[string]any   `json:"technicalSkills"`
	SkillCategories     []SkillCategory  `json:"skillCategories"`
}

// ResumeRecord 简历抽取的最终结构化结果
type ResumeRecord struct {
	Name                string           `json:"name"`
	Title               string           `json:"title"`
	RequisitionNumber   string           `json:"requisitionNumber"`
	ProfessionalSummary []string         `json:"professionalSummary"`
	SummarySections     []SummarySection `json:"summarySections"`
	// Subsections 与 SummarySections 内容一致，为下游消费方保留的兼容字段
	Subsections       []SummarySection `json:"subsections"`
	EmploymentHistory []JobEntry       `json:"employmentHistory"`
	Education         []EducationEntry `json:"education"`
	Certifications    []Certification  `json:"certifications"`
	TechnicalSkills   map[string]any   `json:"technicalSkills"`
	SkillCategories   []SkillCategory  `json:"skillCategories"`
}

// SummarySection 带标题的摘要子段
type SummarySection struct {
	Title   string   `json:"title"`
	Content []string `json:"content"`
}

// JobEntry 一段工作经历
type JobEntry struct {
	CompanyName      string           `json:"companyName"`
	RoleName         string           `json:"roleName"`
	WorkPeriod       string           `json:"workPeriod"`
	Location         string           `json:"location"`
	Responsibilities []string         `json:"responsibilities"`
	KeyTechnologies  string           `json:"keyTechnologies"`
	Subsections      []SummarySection `json:"subsections"`
	Projects         []ProjectEntry   `json:"projects"`
}

// ProjectEntry 工作经历下的一个项目。存在项目时职责归属到项目，
// 上层 Responsibilities 保持为空。
type ProjectEntry struct {
	ProjectName             string   `json:"projectName"`
	ProjectLocation         string   `json:"projectLocation,omitempty"`
	ProjectResponsibilities []string `json:"projectResponsibilities"`
	KeyTechnologies         string   `json:"keyTechnologies"`
	Period                  string   `json:"period"`
}

// EducationEntry 一条教育经历
type EducationEntry struct {
	Degree      string `json:"degree"`
	AreaOfStudy string `json:"areaOfStudy"`
	School      string `json:"school"`
	Location    string `json:"location"`
	Date        string `json:"date"`
	WasAwarded  bool   `json:"wasAwarded"`
}

// Certification 一条证书记录
type Certification struct {
	Name                string `json:"name"`
	IssuedBy            string `json:"issuedBy"`
	DateObtained        string `json:"dateObtained"`
	CertificationNumber string `json:"certificationNumber,omitempty"`
	ExpirationDate      string `json:"expirationDate,omitempty"`
}

// SkillCategory 技能分类
type SkillCategory struct {
	CategoryName  string             `json:"categoryName"`
	Skills        []string           `json:"skills"`
	SubCategories []SkillSubCategory `json:"subCategories"`
}

// SkillSubCategory 技能子分类
type SkillSubCategory struct {
	Name   string   `json:"name"`
	Skills []string `json:"skills"`
}

// NewResumeRecord 返回所有集合字段均已初始化的空记录，
// 序列化后集合输出 []/{} 而不是 null。
func NewResumeRecord() *ResumeRecord {
	return &ResumeRecord{
		ProfessionalSummary: []string{},
		SummarySections:     []SummarySection{},
		Subsections:         []SummarySection{},
		EmploymentHistory:   []JobEntry{},
		Education:           []EducationEntry{},
		Certifications:      []Certification{},
		TechnicalSkills:     map[string]any{},
		SkillCategories:     []SkillCategory{},
	}
}

// EnsureDefaults 补齐记录中为 nil 的集合字段，保证输出形状稳定
func (r *ResumeRecord) EnsureDefaults() {
	if r.ProfessionalSummary == nil {
		r.ProfessionalSummary = []string{}
	}
	if r.SummarySections == nil {
		r.SummarySections = []SummarySection{}
	}
	if r.Subsections == nil {
		r.Subsections = []SummarySection{}
	}
	if r.EmploymentHistory == nil {
		r.EmploymentHistory = []JobEntry{}
	}
	for i := range r.EmploymentHistory {
		job := &r.EmploymentHistory[i]
		if job.Responsibilities == nil {
			job.Responsibilities = []string{}
		}
		if job.Subsections == nil {
			job.Subsections = []SummarySection{}
		}
		if job.Projects == nil {
			job.Projects = []ProjectEntry{}
		}
		for j := range job.Projects {
			if job.Projects[j].ProjectResponsibilities == nil {
				job.Projects[j].ProjectResponsibilities = []string{}
			}
		}
	}
	if r.Education == nil {
		r.Education = []EducationEntry{}
	}
	if r.Certifications == nil {
		r.Certifications = []Certification{}
	}
	if r.TechnicalSkills == nil {
		r.TechnicalSkills = map[string]any{}
	}
	if r.SkillCategories == nil {
		r.SkillCategories = []SkillCategory{}
	}
	for i := range r.SkillCategories {
		cat := &r.SkillCategories[i]
		if cat.Skills == nil {
			cat.Skills = []string{}
		}
		if cat.SubCategories == nil {
			cat.SubCategories = []SkillSubCategory{}
		}
		for j := range cat.SubCategories {
			if cat.SubCategories[j].Skills == nil {
				cat.SubCategories[j].Skills = []string{}
			}
		}
	}
	for i := range r.SummarySections {
		if r.SummarySections[i].Content == nil {
			r.SummarySections[i].Content = []string{}
		}
	}
	for i := range r.Subsections {
		if r.Subsections[i].Content == nil {
			r.Subsections[i].Content = []string{}
		}
	}
}
