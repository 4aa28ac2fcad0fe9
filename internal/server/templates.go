package server

// MemeTemplate is one entry of the known template catalog. The coordinator
// only needs the source image URL for the generation call; rendering is the
// client's business.
type MemeTemplate struct {
	ID  string
	URL string
}

var memeTemplates = []MemeTemplate{
	{ID: "batman", URL: "https://i.imgflip.com/434i5j.png"},
	{ID: "drake", URL: "https://i.imgflip.com/30b1gx.jpg"},
	{ID: "disaster", URL: "https://i.imgflip.com/23ls.jpg"},
	{ID: "distracted", URL: "https://i.imgflip.com/1ur9b0.jpg"},
	{ID: "buttons", URL: "https://i.imgflip.com/1g8my4.jpg"},
}

func templateByID(id string) (MemeTemplate, bool) {
	for _, template := range memeTemplates {
		if template.ID == id {
			return template, true
		}
	}
	return MemeTemplate{}, false
}
