package client

// Domain is a professional field a user can practice for.
type Domain struct {
	Name            string
	Specializations []string
}

// Domains is the fixed catalog offered on the selection screen.
var Domains = []Domain{
	{
		Name:            "Tech & Engineering",
		Specializations: []string{"Frontend Developer", "Backend Developer", "Fullstack Developer", "DevOps Engineer", "Data Scientist"},
	},
	{
		Name:            "Business & Management",
		Specializations: []string{"Product Manager", "Project Manager", "Business Analyst", "Marketing Manager", "Sales Director"},
	},
	{
		Name:            "Creativity & Communication",
		Specializations: []string{"UI/UX Designer", "Content Strategist", "Public Relations", "Technical Writer", "Graphic Designer"},
	},
	{
		Name:            "Specialized Fields",
		Specializations: []string{"Healthcare Professional", "Legal Advisor", "Educator", "Customer Support Rep", "Government Official"},
	},
}
