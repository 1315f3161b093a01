package lolesports

type scheduleEnvelope struct {
	Data struct {
		Schedule struct {
			Pages  schedulePages   `json:"pages"`
			Events []scheduleEvent `json:"events"`
		} `json:"schedule"`
	} `json:"data"`
}

type schedulePages struct {
	Older string `json:"older"`
	Newer string `json:"newer"`
}

type scheduleEvent struct {
	StartTime string         `json:"startTime"`
	State     string         `json:"state"`
	Type      string         `json:"type"`
	BlockName string         `json:"blockName"`
	League    scheduleLeague `json:"league"`
	Match     *scheduleMatch `json:"match"`
}

type scheduleLeague struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

type scheduleMatch struct {
	ID       string         `json:"id"`
	Flags    []string       `json:"flags"`
	Teams    []scheduleTeam `json:"teams"`
	Strategy struct {
		Type  string `json:"type"`
		Count int    `json:"count"`
	} `json:"strategy"`
}

type scheduleTeam struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Code   string `json:"code"`
	Image  string `json:"image"`
	Result *struct {
		Outcome  string `json:"outcome"`
		GameWins int    `json:"gameWins"`
	} `json:"result"`
	Record *struct {
		Wins   int `json:"wins"`
		Losses int `json:"losses"`
	} `json:"record"`
}

type completedEnvelope struct {
	Data struct {
		Schedule struct {
			Events []completedEvent `json:"events"`
		} `json:"schedule"`
	} `json:"data"`
}

type completedEvent struct {
	StartTime string `json:"startTime"`
	BlockName string `json:"blockName"`
	Match     struct {
		ID string `json:"id"`
	} `json:"match"`
	Games []completedGame `json:"games"`
}

type completedGame struct {
	ID     string         `json:"id"`
	Number int            `json:"number"`
	State  string         `json:"state"`
	VODs   []completedVOD `json:"vods"`
}

type completedVOD struct {
	Parameter string `json:"parameter"`
	Provider  string `json:"provider"`
	Locale    string `json:"locale"`
}
