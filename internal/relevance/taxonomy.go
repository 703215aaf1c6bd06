// Package relevance decides whether an extracted tender is worth keeping
// and attaches taxonomy: categories, keywords, matching courses, priority.
package relevance

// Category maps a taxonomy entry to its trigger keywords and the training
// courses offered for it.
type Category struct {
	Keywords []string
	Courses  []string
}

// Taxonomy is the fixed category map. Keys are category IDs stored on
// tenders.
type Taxonomy map[string]Category

// DefaultTaxonomy returns the built-in training-course taxonomy.
func DefaultTaxonomy() Taxonomy {
	return Taxonomy{
		"project-management": {
			Keywords: []string{
				"prince2", "pmp", "project management", "capm", "msp", "portfolio",
				"program management", "pmo", "agile project", "pmbok", "pmi",
			},
			Courses: []string{
				"PRINCE2 Foundation", "PRINCE2 Practitioner", "PRINCE2 Agile",
				"PMP Certification", "CAPM", "MSP", "Portfolio Management",
				"Program Management",
			},
		},
		"it-technical": {
			Keywords: []string{
				"itil", "cloud", "aws", "azure", "devops", "docker", "kubernetes",
				"linux", "python", "java", "database", "sql", "cisco", "vmware",
				"microsoft", "oracle", "sap",
			},
			Courses: []string{
				"ITIL 4 Foundation", "AWS Solutions Architect", "Azure Fundamentals",
				"DevOps Certification", "Linux Administration", "Python Programming",
				"Java Development",
			},
		},
		"cybersecurity": {
			Keywords: []string{
				"security", "cyber", "cissp", "ethical hacking", "penetration",
				"iso 27001", "gdpr", "ceh", "comptia security", "firewall", "soc",
				"siem", "incident response",
			},
			Courses: []string{
				"CISSP Certification", "Ethical Hacking", "ISO 27001",
				"Security Awareness", "CompTIA Security+", "CEH", "Penetration Testing",
			},
		},
		"agile-scrum": {
			Keywords: []string{
				"agile", "scrum", "safe", "kanban", "sprint", "product owner",
				"scrum master", "lean", "jira", "confluence", "retrospective", "backlog",
			},
			Courses: []string{
				"Scrum Master Certification", "Product Owner Certification",
				"SAFe Agilist", "Agile Coach", "Kanban Training",
			},
		},
		"leadership": {
			Keywords: []string{
				"leadership", "management", "executive", "coaching", "change management",
				"transformation", "strategic", "team building", "communication",
				"stakeholder",
			},
			Courses: []string{
				"Leadership Excellence", "Executive Coaching", "Change Management",
				"Strategic Leadership", "Team Leadership",
			},
		},
		"data-analytics": {
			Keywords: []string{
				"data", "analytics", "power bi", "tableau", "excel",
				"business intelligence", "visualization", "reporting", "dashboard",
				"kpi", "metrics", "sql",
			},
			Courses: []string{
				"Power BI Training", "Tableau Certification", "Advanced Excel",
				"Data Analytics", "Business Intelligence", "SQL for Analytics",
			},
		},
		"soft-skills": {
			Keywords: []string{
				"communication", "presentation", "negotiation", "time management",
				"emotional intelligence", "conflict", "teamwork", "public speaking",
				"writing",
			},
			Courses: []string{
				"Presentation Skills", "Negotiation Skills", "Time Management",
				"Business Communication", "Emotional Intelligence", "Conflict Resolution",
			},
		},
		"compliance": {
			Keywords: []string{
				"compliance", "audit", "risk management", "governance", "quality",
				"iso", "regulatory", "health safety", "privacy", "sox", "grc",
			},
			Courses: []string{
				"ISO 9001", "Risk Management", "Compliance Training",
				"Internal Auditor", "Health & Safety", "GDPR Compliance",
			},
		},
	}
}
