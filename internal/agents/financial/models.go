package financial

type marketAPIResponse struct {
	Records []struct {
		Commodity  string `json:"commodity"`
		Market     string `json:"market"`
		ModalPrice string `json:"modal_price"`
	} `json:"records"`
}

type commodityPrice struct {
	Commodity string
	Aliases   []string
	// MSP and reference mandi price, INR per quintal.
	MSP        int
	MandiPrice int
}

type topic int

const (
	topicGeneral topic = iota
	topicPrice
	topicLoan
	topicInsurance
)
