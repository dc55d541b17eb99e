// Package catalog reads and writes the JSON car catalog. Only the fields the
// enrichment pipelines touch are modeled; everything else in the document is
// carried through a load/save cycle untouched and in its original order.
package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// Catalog maps car identifiers to Car records.
type Catalog struct {
	Path string

	doc  Object
	cars map[string]*Car
}

// Car is one catalog record.
type Car struct {
	Brand             string
	Name              string
	SelectableOptions []Option
	ColorImages       []*ColorImage

	fields Object
}

// ColorImage pairs a swatch image with the paint metadata derived for it. A nil
// pointer field means the key is absent from the document.
type ColorImage struct {
	ImageURL string
	Hex      *string
	Name     *string
	Price    *int

	fields Object
}

// Option is a priced add-on offered for a car. Options are only read.
type Option struct {
	Name  string
	Price int
}

// Load reads and parses the catalog at path. Any failure here is fatal to a
// run.
func Load(path string) (*Catalog, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to read catalog %s", path)
	}

	c, err := Parse(content)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to parse catalog %s", path)
	}

	c.Path = path
	return c, nil
}

// Parse decodes a catalog document.
func Parse(content []byte) (*Catalog, error) {
	c := &Catalog{cars: map[string]*Car{}}

	err := json.Unmarshal(content, &c.doc)
	if err != nil {
		return nil, err
	}

	for _, id := range c.doc.keys {
		// null records are carried through as they are
		if isNull(c.doc.values[id]) {
			continue
		}

		car := &Car{}
		err = json.Unmarshal(c.doc.values[id], car)
		if err != nil {
			return nil, fmt.Errorf("car %s: %w", id, err)
		}
		c.cars[id] = car
	}

	return c, nil
}

// IDs returns the car identifiers in document order.
func (c *Catalog) IDs() []string {
	return c.doc.Keys()
}

// Car returns the record for id, or nil if the catalog has no such car or its
// value is null.
func (c *Catalog) Car(id string) *Car {
	return c.cars[id]
}

// Len is the number of cars in the catalog.
func (c *Catalog) Len() int {
	return len(c.cars)
}

// Bytes renders the catalog as 2-space indented JSON with non-ASCII and HTML
// characters left unescaped.
func (c *Catalog) Bytes() ([]byte, error) {
	for _, id := range c.doc.keys {
		car, ok := c.cars[id]
		if !ok {
			continue
		}

		err := c.doc.Set(id, car)
		if err != nil {
			return nil, err
		}
	}

	var buf bytes.Buffer

	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")

	err := enc.Encode(&c.doc)
	if err != nil {
		return nil, err
	}

	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// Save writes the catalog back to its Path. The content is written to a
// temporary file in the same directory and renamed over the original so that a
// crash never leaves a truncated catalog behind.
func (c *Catalog) Save() error {
	content, err := c.Bytes()
	if err != nil {
		return errors.Wrap(err, "unable to encode catalog")
	}

	perm := os.FileMode(0644)
	if stat, err := os.Stat(c.Path); err == nil {
		perm = stat.Mode().Perm()
	}

	dir, base := filepath.Split(c.Path)
	if dir == "" {
		dir = "."
	}

	tf, err := os.CreateTemp(dir, base+".*.tmp")
	if err != nil {
		return errors.Wrapf(err, "unable to create temporary file for %s", c.Path)
	}

	tmpPath := tf.Name()
	defer os.Remove(tmpPath) // no-op once renamed

	_, err = tf.Write(content)
	if err == nil {
		err = tf.Sync()
	}

	closeErr := tf.Close()
	if err == nil {
		err = closeErr
	}

	if err != nil {
		return errors.Wrapf(err, "unable to write %s", tmpPath)
	}

	err = os.Chmod(tmpPath, perm)
	if err != nil {
		return errors.Wrapf(err, "unable to set permissions of %s", tmpPath)
	}

	err = os.Rename(tmpPath, c.Path)
	if err != nil {
		return errors.Wrapf(err, "unable to replace %s", c.Path)
	}

	return nil
}

// HasColorImages reports whether the pipelines have anything to do for the car.
func (car *Car) HasColorImages() bool {
	return car != nil && len(car.ColorImages) > 0
}

// DisplayName is the car's name, or fallback when it has none.
func (car *Car) DisplayName(fallback string) string {
	if car.Name == "" {
		return fallback
	}
	return car.Name
}

func (car *Car) UnmarshalJSON(data []byte) error {
	err := car.fields.UnmarshalJSON(data)
	if err != nil {
		return err
	}

	// brand and name are informational only
	car.fields.Get("brand", &car.Brand)
	car.fields.Get("name", &car.Name)

	var options []Object
	_, err = car.fields.Get("selectableOptions", &options)
	if err != nil {
		return err
	}

	car.SelectableOptions = make([]Option, 0, len(options))
	for i := range options {
		car.SelectableOptions = append(car.SelectableOptions, optionFrom(&options[i]))
	}

	_, err = car.fields.Get("colorImages", &car.ColorImages)
	if err != nil {
		return err
	}

	for i, ci := range car.ColorImages {
		if ci == nil {
			return fmt.Errorf("colorImages[%d] is null", i)
		}
	}

	return nil
}

func (car *Car) MarshalJSON() ([]byte, error) {
	if car.fields.Has("colorImages") || len(car.ColorImages) > 0 {
		err := car.fields.Set("colorImages", car.ColorImages)
		if err != nil {
			return nil, err
		}
	}

	return car.fields.MarshalJSON()
}

// SetHex records a hex color.
func (ci *ColorImage) SetHex(hex string) {
	ci.Hex = &hex
}

// SetName records a color name.
func (ci *ColorImage) SetName(name string) {
	ci.Name = &name
}

// SetPrice records a color option price.
func (ci *ColorImage) SetPrice(price int) {
	ci.Price = &price
}

// SetDefaults makes sure name and price are present without overwriting
// anything already recorded.
func (ci *ColorImage) SetDefaults() {
	if ci.Name == nil {
		ci.SetName("")
	}

	if ci.Price == nil {
		ci.SetPrice(0)
	}
}

func (ci *ColorImage) UnmarshalJSON(data []byte) error {
	err := ci.fields.UnmarshalJSON(data)
	if err != nil {
		return err
	}

	_, err = ci.fields.Get("imageUrl", &ci.ImageURL)
	if err != nil {
		return err
	}

	ci.Hex, err = stringField(&ci.fields, "hex")
	if err != nil {
		return err
	}

	ci.Name, err = stringField(&ci.fields, "name")
	if err != nil {
		return err
	}

	ci.Price, err = intField(&ci.fields, "price")
	if err != nil {
		return err
	}

	return nil
}

func (ci *ColorImage) MarshalJSON() ([]byte, error) {
	if ci.Hex != nil {
		ci.fields.Set("hex", *ci.Hex)
	}

	if ci.Name != nil {
		ci.fields.Set("name", *ci.Name)
	}

	if ci.Price != nil {
		ci.fields.Set("price", *ci.Price)
	}

	return ci.fields.MarshalJSON()
}

//--------------------------------------------------------------------------------
// private

func optionFrom(o *Object) Option {
	opt := Option{}
	o.Get("name", &opt.Name)

	price, err := intField(o, "price")
	if err == nil && price != nil {
		opt.Price = *price
	}

	return opt
}

func stringField(o *Object, key string) (*string, error) {
	var s string
	ok, err := o.Get(key, &s)
	if !ok || err != nil {
		return nil, err
	}
	return &s, nil
}

// intField accepts integral and fractional numbers, truncating the latter
func intField(o *Object, key string) (*int, error) {
	var n json.Number
	ok, err := o.Get(key, &n)
	if !ok || err != nil {
		return nil, err
	}

	if i, err := n.Int64(); err == nil {
		v := int(i)
		return &v, nil
	}

	f, err := n.Float64()
	if err != nil {
		return nil, fmt.Errorf("unable to decode %q: %w", key, err)
	}

	v := int(f)
	return &v, nil
}
