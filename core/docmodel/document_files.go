package docmodel

import (
	"fmt"
	"path"
	"strconv"
)

// PathImagesMetadataType names the metadata on the physical root that
// holds the directory the page images live in.
const PathImagesMetadataType = "pathimagefiles"

// PhysPageNumberMetadataType names the physical page counter metadata.
const PhysPageNumberMetadataType = "physPageNumber"

// LogicalPageNumberMetadataType names the printed page label metadata.
const LogicalPageNumberMetadataType = "logicalPageNumber"

// pathToImages returns the image directory declared on the physical
// root, or a fallback.
func (d *Document) pathToImages() string {
	if d.physical != nil {
		for _, md := range d.physical.MetadataByType(PathImagesMetadataType) {
			if md.Value != "" {
				return md.Value
			}
		}
	}
	return "/images"
}

// AddContentFileFromPhysicalPage attaches a content file to a page node
// that has none yet, deriving the location from the physical root's image
// path and the page counter.
func (d *Document) AddContentFileFromPhysicalPage(page *StructNode) {
	if page == nil || len(page.ContentFileReferences()) > 0 {
		return
	}
	pageNo := "0"
	for _, md := range page.MetadataByType(PhysPageNumberMetadataType) {
		if md.Value != "" {
			pageNo = md.Value
		}
	}
	location := path.Join(d.pathToImages(), imageFileName(pageNo))
	cf := NewContentFile(location, "image/tiff")
	page.AddContentFile(cf)
}

// imageFileName derives the canonical image name from a page counter.
func imageFileName(pageNo string) string {
	if n, err := strconv.Atoi(pageNo); err == nil {
		return fmt.Sprintf("%08d.tif", n)
	}
	return pageNo + ".tif"
}

// AddAllContentFiles walks the physical tree and attaches a content file
// to every leaf page that has none, rebuilding the file set along the way.
func (d *Document) AddAllContentFiles() {
	if d.physical == nil {
		return
	}
	if d.fileSet == nil {
		d.fileSet = NewFileSet()
	}
	var walk func(n *StructNode)
	walk = func(n *StructNode) {
		if len(n.children) == 0 && n != d.physical {
			d.AddContentFileFromPhysicalPage(n)
		}
		for _, c := range n.children {
			walk(c)
		}
	}
	walk(d.physical)
}

// OverrideContentFiles replaces the locations of the page content files,
// in page order, with the given image locations. Pages beyond the list
// keep their files.
func (d *Document) OverrideContentFiles(images []string) {
	if d.physical == nil {
		return
	}
	index := 0
	var walk func(n *StructNode)
	walk = func(n *StructNode) {
		if len(n.children) == 0 && n != d.physical && index < len(images) {
			for _, ref := range n.contentFileRefs {
				ref.File.Location = images[index]
			}
			index++
		}
		for _, c := range n.children {
			walk(c)
		}
	}
	walk(d.physical)
}
