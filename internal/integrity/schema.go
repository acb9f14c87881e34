package integrity

// FieldKind is the expected runtime shape of a metadata field after JSON
// decoding.
type FieldKind string

const (
	KindString FieldKind = "string"
	KindNumber FieldKind = "number"
	KindBool   FieldKind = "bool"
	KindList   FieldKind = "list"
	KindObject FieldKind = "object"
)

// Field describes one expected metadata field. Nullable fields accept an
// explicit null in place of a value of Kind; everything else must carry a
// non-empty value of the right shape.
type Field struct {
	Name     string
	Kind     FieldKind
	Nullable bool
}

// ExpectedFields is the metadata schema the scan evaluates for every record.
// It matches the field set repair fetches request from Freesound.
var ExpectedFields = []Field{
	{Name: "id", Kind: KindNumber},
	{Name: "name", Kind: KindString},
	{Name: "username", Kind: KindString},
	{Name: "uploader_id", Kind: KindNumber},
	{Name: "tags", Kind: KindList},
	{Name: "description", Kind: KindString, Nullable: true},
	{Name: "duration", Kind: KindNumber},
	{Name: "filesize", Kind: KindNumber},
	{Name: "type", Kind: KindString},
	{Name: "channels", Kind: KindNumber},
	{Name: "samplerate", Kind: KindNumber},
	{Name: "bitdepth", Kind: KindNumber, Nullable: true},
	{Name: "bitrate", Kind: KindNumber, Nullable: true},
	{Name: "license", Kind: KindString},
	{Name: "created", Kind: KindString},
	{Name: "downloads", Kind: KindNumber},
	{Name: "avg_rating", Kind: KindNumber},
	{Name: "num_ratings", Kind: KindNumber},
	{Name: "num_comments", Kind: KindNumber},
	{Name: "previews", Kind: KindObject},
	{Name: "images", Kind: KindObject},
	{Name: "pack", Kind: KindString, Nullable: true},
	{Name: "geotag", Kind: KindObject, Nullable: true},
	{Name: "ac_analysis", Kind: KindObject, Nullable: true},
}

// EngagementFields are the numeric popularity counters a metadata refresh
// overwrites unconditionally. Gap-filling repair never touches a populated
// value; these four are the sole exception, and only in the refresh pass.
var EngagementFields = []string{"downloads", "avg_rating", "num_ratings", "num_comments"}

// matchesKind reports whether a decoded JSON value has the expected shape.
func matchesKind(value any, kind FieldKind) bool {
	switch kind {
	case KindString:
		_, ok := value.(string)
		return ok
	case KindNumber:
		_, ok := value.(float64)
		return ok
	case KindBool:
		_, ok := value.(bool)
		return ok
	case KindList:
		switch value.(type) {
		case []any, []string:
			return true
		}
		return false
	case KindObject:
		_, ok := value.(map[string]any)
		return ok
	}
	return false
}
