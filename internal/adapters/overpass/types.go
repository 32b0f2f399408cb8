package overpass

type response struct {
	Elements []element `json:"elements"`
}

type element struct {
	Type      string            `json:"type"`
	ID        int64             `json:"id"`
	Lat       *float64          `json:"lat"`
	Lon       *float64          `json:"lon"`
	Version   int               `json:"version"`
	Timestamp string            `json:"timestamp"`
	UID       int64             `json:"uid"`
	User      string            `json:"user"`
	Tags      map[string]string `json:"tags"`
	Geometry  []latLon          `json:"geometry"`
	Members   []member          `json:"members"`
}

type member struct {
	Type     string   `json:"type"`
	Ref      int64    `json:"ref"`
	Role     string   `json:"role"`
	Geometry []latLon `json:"geometry"`
}

type latLon struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}
