package main

import (
	"time"

	"github.com/neuronlabs/fancy/config"
	"github.com/neuronlabs/fancy/db"
	"github.com/neuronlabs/fancy/gateway"
	"github.com/neuronlabs/fancy/mapping"
	"github.com/neuronlabs/fancy/serializer"
	"github.com/neuronlabs/fancy/viewset"
)

// Author is the books author.
type Author struct {
	ID    int
	Name  string
	Books []*Book `neuron:"foreign=AuthorID" gorm:"-"`
}

// Book is the catalog book.
type Book struct {
	ID          int
	Title       string
	Pages       int
	PublishedAt *time.Time
	AuthorID    *int
	Author      *Author `gorm:"-"`
	Tags        []*Tag  `neuron:"many2many=BookTag" gorm:"-"`
}

// Tag is the book label.
type Tag struct {
	ID   int
	Name string
}

// BookTag is the books and tags join model.
type BookTag struct {
	ID     int
	BookID int
	TagID  int
}

// Shelf is the credential owned books collection.
type Shelf struct {
	ID    int
	Name  string
	Owner int64
	Books []*Book `neuron:"many2many=ShelfBook" gorm:"-"`
}

// ShelfBook is the shelves and books join model.
type ShelfBook struct {
	ID      int
	ShelfID int
	BookID  int
}

// Reader is the club member.
type Reader struct {
	ID   int64
	Name string
}

// Club is the readers club. The club founder becomes its member.
type Club struct {
	ID      int
	Name    string
	Members []*Reader `neuron:"many2many=ClubMember" gorm:"-"`
}

// ClubMember is the clubs and readers join model.
type ClubMember struct {
	ID       int
	ClubID   int
	ReaderID int64
}

// route is the collection with its handlers.
type route struct {
	collection  string
	handlers    gateway.Handlers
	middlewares []string
}

func bookshelfModels() []interface{} {
	return []interface{}{&Author{}, &Book{}, &Tag{}, &BookTag{}, &Shelf{}, &ShelfBook{}, &Reader{}, &Club{}, &ClubMember{}}
}

// bookshelfRoutes creates the bookshelf serializers and view sets.
func bookshelfRoutes(models *mapping.ModelMap, d *db.DB, settings *config.Fancy) ([]route, error) {
	tags, err := serializer.New(models, &Tag{}, serializer.Meta{Fields: []string{"id", "name"}},
		&serializer.Field{Name: "name", Kind: serializer.KindChar, Required: true, Validate: "max=50"},
	)
	if err != nil {
		return nil, err
	}
	authors, err := serializer.New(models, &Author{}, serializer.Meta{Fields: []string{"id", "name", "books"}},
		&serializer.Field{Name: "name", Kind: serializer.KindChar, Required: true, Validate: "max=100"},
	)
	if err != nil {
		return nil, err
	}
	books, err := serializer.New(models, &Book{}, serializer.Meta{Fields: []string{"id", "title", "pages", "published_at", "author", "tags", "tags_ids"}},
		&serializer.Field{Name: "title", Kind: serializer.KindChar, Required: true, Validate: "max=200"},
		&serializer.Field{Name: "pages", Kind: serializer.KindInteger, Validate: "min=0"},
		&serializer.Field{Name: "published_at", Kind: serializer.KindDateTime, AllowNull: true},
		&serializer.Field{Name: "author", Kind: serializer.KindNested, Child: authors, AllowNull: true},
		&serializer.Field{Name: "tags", Kind: serializer.KindNestedList, Child: tags},
		&serializer.Field{Name: "tags_ids", Kind: serializer.KindPrimaryKeyIDs, WriteOnly: true},
	)
	if err != nil {
		return nil, err
	}
	shelves, err := serializer.New(models, &Shelf{}, serializer.Meta{Fields: []string{"id", "name", "owner", "books", "books_ids"}},
		&serializer.Field{Name: "name", Kind: serializer.KindChar, Required: true},
		&serializer.Field{Name: "owner", Kind: serializer.KindInteger},
		&serializer.Field{Name: "books_ids", Kind: serializer.KindPrimaryKeyIDs, WriteOnly: true},
	)
	if err != nil {
		return nil, err
	}
	readers, err := serializer.New(models, &Reader{}, serializer.Meta{Fields: []string{"id", "name"}},
		&serializer.Field{Name: "name", Kind: serializer.KindChar, Required: true},
	)
	if err != nil {
		return nil, err
	}
	clubs, err := serializer.New(models, &Club{}, serializer.Meta{Fields: []string{"id", "name", "members"}},
		&serializer.Field{Name: "name", Kind: serializer.KindChar, Required: true},
	)
	if err != nil {
		return nil, err
	}

	options := []viewset.Option{viewset.WithSettings(settings)}
	tagsView, err := viewset.New(tags, d, options...)
	if err != nil {
		return nil, err
	}
	authorsView, err := viewset.New(authors, d, options...)
	if err != nil {
		return nil, err
	}
	booksView, err := viewset.New(serializer.Nested(books), d, options...)
	if err != nil {
		return nil, err
	}
	readersView, err := viewset.New(readers, d, options...)
	if err != nil {
		return nil, err
	}
	shelvesView, err := viewset.NewSelf(serializer.Nested(shelves), d, "owner", options...)
	if err != nil {
		return nil, err
	}
	clubsView, err := viewset.NewSelf(clubs, d, "members__id", options...)
	if err != nil {
		return nil, err
	}
	if err = clubsView.SetSelfModel(models, &ClubMember{}, "club_id", "reader_id"); err != nil {
		return nil, err
	}

	return []route{
		{collection: "tags", handlers: tagsView},
		{collection: "authors", handlers: authorsView},
		{collection: "books", handlers: booksView},
		{collection: "readers", handlers: readersView},
		{collection: "shelves", handlers: shelvesView},
		{collection: "clubs", handlers: clubsView, middlewares: []string{gateway.CredentialRequired}},
	}, nil
}
