package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"
)

type address struct {
	City string `bson:"city"`
	Zip  string `bson:"zip"`
}

type audit struct {
	CreatedAt time.Time `bson:"createdAt"`
}

type customerDoc struct {
	ID      string    `bson:"_id"`
	Name    string    `bson:"name"`
	Address address   `bson:"address"`
	Audit   audit     `bson:",inline"`
	Secret  string    `bson:"-"`
	Tags    []string  // sin etiqueta: nombre en minúsculas
	Seen    time.Time `bson:"seen"`
	hidden  string
}

func TestSchemaOf(t *testing.T) {
	s := SchemaOf(&customerDoc{})

	for _, f := range []string{"_id", "name", "address", "address.city", "address.zip", "createdAt", "tags", "seen"} {
		assert.True(t, s.HasField(f), f)
	}
	for _, f := range []string{"Secret", "secret", "audit", "hidden"} {
		assert.False(t, s.HasField(f), f)
	}
}

func TestFieldSet_SubPaths(t *testing.T) {
	s := Fields("address")

	assert.True(t, s.HasField("_id"))
	assert.True(t, s.HasField("address.city.code"))
	assert.False(t, s.HasField("addressbook"))
	assert.False(t, s.HasField("name"))
}

func TestParseSelect(t *testing.T) {
	assert.Equal(t, bson.M{"name": 1, "email": 1, "_id": 0, "password": 1}, ParseSelect("name, email -_id +password"))
	assert.Nil(t, ParseSelect("   "))
	assert.Equal(t, bson.M{"name": 1}, ParseSelect("name - +"))
	assert.Nil(t, ParseSelect("- , +"))
}

func TestPopulate_Foreign(t *testing.T) {
	assert.Equal(t, "_id", Populate{Path: "owner"}.Foreign())
	assert.Equal(t, "slug", Populate{Path: "tag", ForeignField: "slug"}.Foreign())
}
