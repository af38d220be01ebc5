package handlers

// Actor identifies who invoked a command.
type Actor struct {
	Tag  string `doc:"Stable identifier of the actor" example:"ethan"  json:"tag"            maxLength:"64" minLength:"1"`
	Nick string `doc:"Display name of the actor"      example:"Ethan"  json:"nick,omitempty" maxLength:"64"`
}

// AddShortlinkRequest is the request for creating or overwriting a shortlink.
type AddShortlinkRequest struct {
	Body struct {
		Alias       string `doc:"Alias to create, without the leading slash" example:"discord"                    json:"alias"           maxLength:"256"  minLength:"1"`
		Destination string `doc:"URL the alias redirects to"                   example:"https://discord.gg/example" json:"destination"     maxLength:"2048" minLength:"1"`
		Force       bool   `doc:"Overwrite the alias if it already exists"                                          json:"force,omitempty"`
		TTL         string `doc:"Remove the alias after this long"           example:"2d"                         json:"ttl,omitempty"`
		Actor       Actor  `json:"actor"`
	}
}

// RemoveShortlinkRequest is the request for removing a shortlink.
type RemoveShortlinkRequest struct {
	Alias     string `doc:"Alias to remove"                example:"discord" maxLength:"256" minLength:"1" query:"alias" required:"true"`
	ActorTag  string `doc:"Stable identifier of the actor" header:"X-Actor-Tag"  required:"true"`
	ActorNick string `doc:"Display name of the actor"      header:"X-Actor-Nick"`
}

// OutcomeResponse carries the text shown to whoever invoked the command. Failures are
// reported here too; the status code only reflects transport problems.
type OutcomeResponse struct {
	Body struct {
		Content string `doc:"Outcome of the command, a commit link or the error message" json:"content"`
	}
}
