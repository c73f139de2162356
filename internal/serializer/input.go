package serializer

import (
	"bytes"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"unicode/utf8"

	"dojo/internal/models"
	"dojo/internal/validation"
)

// DataField is the multipart field carrying the JSON document of an upload request.
const DataField = "data"

// Field limits.
const (
	MaxTitleLen       = 255
	MaxCategoryLen    = 100
	MaxCommentLen     = 10000
	MaxBeltLevelLen   = 50
	MaxMartialArtLen  = 100
	MaxAddressLen     = 255
	MaxCityLen        = 100
	MaxDescriptionLen = 50000
)

// PostInput is the document of the "data" field on post create and update.
type PostInput struct {
	Title       string `json:"title"`
	Category    string `json:"category"`
	Description string `json:"description"`
}

// CommentInput is the body of a comment create or update. Any author
// field sent by the client is ignored.
type CommentInput struct {
	Post        uint   `json:"post"`
	CommentDesc string `json:"commentDesc"`
	Parent      *uint  `json:"parent"`
	Checked     bool   `json:"checked"`
}

// ProfileInput is the document of the "data" field on profile create and update.
type ProfileInput struct {
	BeltLevel   string `json:"beltLevel"`
	Description string `json:"description"`
	MartialArt  string `json:"martialArt"`
	Address     string `json:"address"`
	City        string `json:"city"`
	State       string `json:"state"`
	ZipCode     string `json:"zipCode"`
}

// RegisterInput is the registration body.
type RegisterInput struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Password2 string `json:"password2"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// DecodeData parses the JSON document of the multipart "data" field into dest.
// Unknown keys are ignored.
func DecodeData(raw string, dest any) error {
	if strings.TrimSpace(raw) == "" {
		return models.NewFieldError(DataField, "This field is required.")
	}
	if err := decodeJSON([]byte(raw), dest); err != nil {
		return models.NewFieldError(DataField, "Must be a JSON object: "+err.Error())
	}
	return nil
}

// DecodeBody parses a JSON request body into dest.
func DecodeBody(body []byte, dest any) error {
	if len(bytes.TrimSpace(body)) == 0 {
		return models.NewValidationError("Request body is required")
	}
	if err := decodeJSON(body, dest); err != nil {
		return models.NewValidationError("Invalid request body")
	}
	return nil
}

func decodeJSON(b []byte, dest any) error {
	dec := json.NewDecoder(bytes.NewReader(b))
	if err := dec.Decode(dest); err != nil {
		return err
	}
	if dec.More() {
		return errors.New("unexpected data after JSON value")
	}
	return nil
}

type fieldErrors map[string]string

func (f fieldErrors) maxLen(field, value string, limit int) {
	if utf8.RuneCountInString(value) > limit {
		f[field] = "Ensure this field has no more than " + strconv.Itoa(limit) + " characters."
	}
}

func (f fieldErrors) required(field, value string) {
	if strings.TrimSpace(value) == "" {
		f[field] = "This field may not be blank."
	}
}

func (f fieldErrors) err() error {
	if len(f) == 0 {
		return nil
	}
	return models.NewFieldErrors(f)
}

// Validate checks the post document.
func (in *PostInput) Validate() error {
	f := fieldErrors{}
	in.Title = strings.TrimSpace(in.Title)
	f.required("title", in.Title)
	f.maxLen("title", in.Title, MaxTitleLen)
	f.maxLen("category", in.Category, MaxCategoryLen)
	f.maxLen("description", in.Description, MaxDescriptionLen)
	return f.err()
}

// Validate checks the comment text.
func (in *CommentInput) Validate() error {
	f := fieldErrors{}
	f.required("commentDesc", in.CommentDesc)
	f.maxLen("commentDesc", in.CommentDesc, MaxCommentLen)
	return f.err()
}

// Validate checks the profile document and normalizes the state code.
func (in *ProfileInput) Validate() error {
	f := fieldErrors{}
	f.maxLen("beltLevel", in.BeltLevel, MaxBeltLevelLen)
	f.maxLen("martialArt", in.MartialArt, MaxMartialArtLen)
	f.maxLen("address", in.Address, MaxAddressLen)
	f.maxLen("city", in.City, MaxCityLen)
	f.maxLen("description", in.Description, MaxDescriptionLen)

	in.State = validation.NormalizeState(in.State)
	if err := validation.ValidateState(in.State); err != nil {
		f["state"] = err.Error()
	}
	in.ZipCode = strings.TrimSpace(in.ZipCode)
	if err := validation.ValidateZipCode(in.ZipCode); err != nil {
		f["zipCode"] = err.Error()
	}
	return f.err()
}

// Validate checks the registration body. Uniqueness is left to the caller.
func (in *RegisterInput) Validate() error {
	f := fieldErrors{}
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)

	f.required("username", in.Username)
	f.required("email", in.Email)
	f.required("password", in.Password)
	f.required("password2", in.Password2)
	f.maxLen("first_name", in.FirstName, 150)
	f.maxLen("last_name", in.LastName, 150)

	if _, missing := f["username"]; !missing {
		if err := validation.ValidateUsername(in.Username); err != nil {
			f["username"] = err.Error()
		}
	}
	if _, missing := f["email"]; !missing {
		if err := validation.ValidateEmail(in.Email); err != nil {
			f["email"] = err.Error()
		}
	}
	if _, missing := f["password"]; !missing {
		if err := validation.ValidatePasswordConfirmation(in.Password, in.Password2); err != nil {
			f["password"] = err.Error()
		} else if err := validation.ValidatePassword(in.Password); err != nil {
			f["password"] = err.Error()
		}
	}
	return f.err()
}
