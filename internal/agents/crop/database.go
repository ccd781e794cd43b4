package crop

// cropDatabase is the curated agronomy reference the agent answers from.
// Aliases include common Hindi names so Hinglish queries still match after
// normalization.
var cropDatabase = []cropInfo{
	{
		Name:         "rice",
		Aliases:      []string{"paddy", "dhan", "chawal"},
		Season:       "kharif",
		SowingWindow: "June to July with the monsoon onset",
		Varieties:    []string{"Pusa Basmati 1121", "IR-64", "Swarna (MTU 7029)"},
		Irrigation:   "Maintain 5 cm standing water through tillering; drain a week before harvest.",
		Pests: []pestInfo{
			{Name: "stem borer", Symptom: "dead hearts in vegetative stage, whiteheads at flowering", Treatment: "install pheromone traps; apply cartap hydrochloride if infestation crosses 5% dead hearts"},
			{Name: "brown planthopper", Symptom: "hopperburn patches in the field", Treatment: "drain the field and spray imidacloprid at the crop base"},
		},
		Yield: "Typical yield is 40-60 quintals per hectare under irrigated conditions.",
	},
	{
		Name:         "wheat",
		Aliases:      []string{"gehu", "gehun"},
		Season:       "rabi",
		SowingWindow: "first fortnight of November",
		Varieties:    []string{"HD-2967", "HD-3086", "PBW-343"},
		Irrigation:   "Four to six irrigations; crown root initiation at 21 days is the critical one.",
		Pests: []pestInfo{
			{Name: "yellow rust", Symptom: "yellow stripes on leaves in cool humid spells", Treatment: "spray propiconazole 25 EC at first appearance"},
			{Name: "aphid", Symptom: "colonies on ears and flag leaf", Treatment: "spray only past threshold; natural enemies usually suffice"},
		},
		Yield: "Typical yield is 40-55 quintals per hectare with timely sowing.",
	},
	{
		Name:         "sugarcane",
		Aliases:      []string{"ganna"},
		Season:       "annual",
		SowingWindow: "February to March (spring planting) or October (autumn planting)",
		Varieties:    []string{"Co-0238", "Co-86032", "CoJ-64"},
		Irrigation:   "Irrigate every 7-10 days in summer and every 15-20 days in winter.",
		Pests: []pestInfo{
			{Name: "early shoot borer", Symptom: "dead hearts in young canes that pull out easily", Treatment: "apply chlorantraniliprole at planting; remove and destroy affected shoots"},
			{Name: "red rot", Symptom: "reddening of internal tissue with crossbands", Treatment: "plant resistant varieties; remove infected clumps immediately"},
		},
		Yield: "Typical yield is 700-800 quintals per hectare.",
	},
	{
		Name:         "cotton",
		Aliases:      []string{"kapas"},
		Season:       "kharif",
		SowingWindow: "April to May in north India, June with monsoon elsewhere",
		Varieties:    []string{"Bt hybrids (RCH-134)", "Suraj", "LRA-5166"},
		Irrigation:   "Critical stages are flowering and boll development; avoid moisture stress there.",
		Pests: []pestInfo{
			{Name: "pink bollworm", Symptom: "rosetted flowers and damaged bolls", Treatment: "pheromone traps from 45 days; avoid late-season extension of the crop"},
			{Name: "whitefly", Symptom: "sooty mould and leaf curl virus spread", Treatment: "yellow sticky traps; spray neem-based products before chemicals"},
		},
		Yield: "Typical yield is 15-25 quintals of seed cotton per hectare.",
	},
	{
		Name:         "maize",
		Aliases:      []string{"makka", "corn"},
		Season:       "kharif and rabi",
		SowingWindow: "June to July for kharif, late October for rabi",
		Varieties:    []string{"HQPM-1", "Vivek Hybrid 27", "DHM-117"},
		Irrigation:   "Tasseling and silking are the critical irrigation stages.",
		Pests: []pestInfo{
			{Name: "fall armyworm", Symptom: "ragged shot holes in whorl leaves with sawdust-like frass", Treatment: "release Trichogramma; spray emamectin benzoate into whorls if damage exceeds 10%"},
		},
		Yield: "Typical yield is 50-80 quintals per hectare for hybrids.",
	},
}

// topicKeywords route a matched crop question to the right section of its
// record.
var topicKeywords = map[topic][]string{
	topicSowing:     {"sow", "sowing", "plant", "planting", "when to", "season", "bona", "buai"},
	topicIrrigation: {"irrigat", "water", "sinchai", "pani"},
	topicPest:       {"pest", "disease", "insect", "borer", "rust", "blight", "keeda", "rog", "spray"},
	topicVariety:    {"variety", "varieties", "seed", "hybrid", "beej", "kism"},
	topicYield:      {"yield", "production", "output", "paidawar", "upaj"},
}
