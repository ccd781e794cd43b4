package policy

type scheme struct {
	Name        string
	Keywords    []string
	Benefit     string
	Eligibility string
	HowToApply  string
}
