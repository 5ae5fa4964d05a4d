package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/evepupil/onaho-crawler/internal/crawler"
)

// ProductsFileName is the products file inside a task directory.
const ProductsFileName = "products.json"

// productsDocument is the on-disk shape of the products file.
type productsDocument struct {
	TaskName  string            `json:"task_name"`
	Template  crawler.Template  `json:"template"`
	CrawlInfo crawler.CrawlInfo `json:"crawl_info"`
	Products  []crawler.Product `json:"products"`
}

// ProductStore is the file-backed crawler.ProductStore for one task.
type ProductStore struct {
	taskName string
	tmpl     crawler.Template
	path     string
}

// NewProductStore returns a store writing to dir/products.json.
func NewProductStore(dir, taskName string, tmpl crawler.Template) *ProductStore {
	return &ProductStore{
		taskName: taskName,
		tmpl:     tmpl,
		path:     filepath.Join(dir, ProductsFileName),
	}
}

// Path returns the products file location.
func (s *ProductStore) Path() string {
	return s.path
}

// Load returns previously persisted products. A missing file yields nil.
func (s *ProductStore) Load() ([]crawler.Product, error) {
	var doc productsDocument
	if err := ReadJSON(s.path, &doc); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	return doc.Products, nil
}

// Save rewrites the products file with the full collection.
func (s *ProductStore) Save(products []crawler.Product, info crawler.CrawlInfo) error {
	doc := productsDocument{
		TaskName:  s.taskName,
		Template:  s.tmpl,
		CrawlInfo: info,
		Products:  products,
	}
	if err := WriteJSONAtomic(s.path, doc); err != nil {
		return fmt.Errorf("save products: %w", err)
	}
	return nil
}
