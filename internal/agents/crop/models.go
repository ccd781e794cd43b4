package crop

type cropInfo struct {
	Name         string
	Aliases      []string
	Season       string
	SowingWindow string
	Varieties    []string
	Irrigation   string
	Pests        []pestInfo
	Yield        string
}

type pestInfo struct {
	Name      string
	Symptom   string
	Treatment string
}

type topic int

const (
	topicGeneral topic = iota
	topicSowing
	topicIrrigation
	topicPest
	topicVariety
	topicYield
)
