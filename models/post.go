package models

import (
	"encoding/json"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PostID is the store-assigned identifier of a post. It is stored as a
// native ObjectID and only rendered as a hex string at the JSON boundary.
type PostID primitive.ObjectID

// NewPostID generates a fresh identifier the same way the MongoDB driver
// does for documents inserted without an _id.
func NewPostID() PostID {
	return PostID(primitive.NewObjectID())
}

// parsePostID parses the 24 character hex form produced by String.
func parsePostID(s string) (PostID, error) {
	oid, err := primitive.ObjectIDFromHex(s)
	if err != nil {
		return PostID{}, fmt.Errorf("invalid post id %q: %w", s, err)
	}
	return PostID(oid), nil
}

func (id PostID) String() string {
	return primitive.ObjectID(id).Hex()
}

func (id PostID) IsZero() bool {
	return primitive.ObjectID(id).IsZero()
}

func (id PostID) MarshalJSON() ([]byte, error) {
	return json.Marshal(id.String())
}

func (id *PostID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := parsePostID(s)
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

func (id PostID) MarshalBSONValue() (bsontype.Type, []byte, error) {
	return bson.MarshalValue(primitive.ObjectID(id))
}

func (id *PostID) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	oid, ok := bson.RawValue{Type: t, Value: data}.ObjectIDOK()
	if !ok {
		return fmt.Errorf("cannot decode bson %s into PostID", t)
	}
	*id = PostID(oid)
	return nil
}

// Post model for feed posts
type Post struct {
	ID          PostID    `json:"_id" bson:"_id,omitempty"`
	Description string    `json:"description" bson:"description"`
	PhotoURL    string    `json:"photo_url" bson:"photo_url"`
	Likes       int       `json:"likes" bson:"likes"`
	Comments    []Comment `json:"comments" bson:"comments"`
}

// Comment model for post comments
type Comment struct {
	Author string `json:"author" bson:"author"`
	Text   string `json:"text" bson:"text"`
}

// NewPost builds a post with the creation defaults: no likes, no comments.
func NewPost(description, photoURL string) Post {
	return Post{
		Description: description,
		PhotoURL:    photoURL,
		Likes:       0,
		Comments:    []Comment{},
	}
}

// Normalize makes sure a decoded post still renders comments as [] rather than null.
func (p *Post) Normalize() {
	if p.Comments == nil {
		p.Comments = []Comment{}
	}
}

// CreatePostRequest model for creating a new post. Pointers keep "absent"
// distinguishable from "empty".
type CreatePostRequest struct {
	Description *string `json:"description" validate:"required"`
	PhotoURL    *string `json:"photo_url,omitempty"`
}

// ToPost applies the field defaults to a validated request.
func (r CreatePostRequest) ToPost() Post {
	photoURL := ""
	if r.PhotoURL != nil {
		photoURL = *r.PhotoURL
	}
	return NewPost(*r.Description, photoURL)
}

// PostResponse is the body returned by post creation endpoints
type PostResponse struct {
	Message string        `json:"message"`
	Post    Post          `json:"post"`
	File    *UploadedFile `json:"file,omitempty"`
}

// UploadedFile describes an image stored by the upload endpoint
type UploadedFile struct {
	Name         string `json:"name"`
	OriginalName string `json:"original_name"`
	Size         int64  `json:"size"`
	ThumbnailURL string `json:"thumbnail_url"`
}

// ErrorResponse is the body of every 4xx/5xx response
type ErrorResponse struct {
	Error string `json:"error"`
}
