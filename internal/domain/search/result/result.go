package result

// Ranked is one externally visible search hit. For a non-empty result list
// scores are monotonically non-increasing in list order.
type Ranked struct {
	id          int
	score       float64
	category    string
	description string
	path        string
	imageB64    string
}

// New creates a ranked result.
func New(id int, score float64, category, description, path, imageB64 string) Ranked {
	return Ranked{
		id:          id,
		score:       score,
		category:    category,
		description: description,
		path:        path,
		imageB64:    imageB64,
	}
}

// ID returns the catalog row identifier.
func (r *Ranked) ID() int { return r.id }

// Score returns the final relevance score in [0, 1].
func (r *Ranked) Score() float64 { return r.score }

// Category returns the item category.
func (r *Ranked) Category() string { return r.category }

// Description returns the item description.
func (r *Ranked) Description() string { return r.description }

// Path returns the asset locator.
func (r *Ranked) Path() string { return r.path }

// ImageB64 returns the base64-encoded asset, empty when the asset was not
// requested or could not be read.
func (r *Ranked) ImageB64() string { return r.imageB64 }
