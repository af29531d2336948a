package handlers

import (
	"io"
	"strconv"
	"strings"

	"vendicraft/internal/models"
	"vendicraft/internal/services"
	"vendicraft/pkg/cloudinary"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// imageField is the multipart field carrying a product picture.
const imageField = "image"

// ProductHandler serves the public catalog and the administrator
// mutations on it.
type ProductHandler struct {
	service  *services.ProductService
	validate *validator.Validate
	logger   *zap.Logger
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(service *services.ProductService, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{
		service:  service,
		validate: validator.New(),
		logger:   orNop(logger),
	}
}

// RegisterRoutes registers the product routes. Reads are public, writes go
// through requireAuth.
func (h *ProductHandler) RegisterRoutes(router fiber.Router, requireAuth fiber.Handler) {
	productRoutes := router.Group("/products")
	productRoutes.Get("/", h.HandleGetProducts)
	productRoutes.Get("/:id", h.HandleGetProductByID)

	productRoutes.Post("/", requireAuth, h.HandleCreateProduct)
	productRoutes.Post("/images", requireAuth, h.HandleUploadImage)
	productRoutes.Put("/:id", requireAuth, h.HandleUpdateProduct)
	productRoutes.Delete("/:id", requireAuth, h.HandleDeleteProduct)
	productRoutes.Post("/reload", requireAuth, h.HandleReload)
}

// HandleGetProducts lists the catalog. Supported query parameters are
// category, collection and in_stock.
func (h *ProductHandler) HandleGetProducts(c *fiber.Ctx) error {
	inStock, _ := strconv.ParseBool(c.Query("in_stock"))
	filter := models.ProductFilter{
		Category:    c.Query("category"),
		Collection:  c.Query("collection"),
		InStockOnly: inStock,
	}
	products, err := h.service.Products(c.UserContext(), filter)
	if err != nil {
		return failed(c, h.logger, "Could not retrieve products", err)
	}
	return c.JSON(products)
}

// HandleGetProductByID returns a single product.
func (h *ProductHandler) HandleGetProductByID(c *fiber.Ctx) error {
	product, err := h.service.GetProductByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return failed(c, h.logger, "Could not retrieve product", err)
	}
	return c.JSON(product)
}

// productForm is the multipart rendition of a product. JSON bodies decode
// straight into models.Product and models.ProductUpdate.
type productForm struct {
	Name        *string  `form:"name"`
	Description *string  `form:"description"`
	Price       *int64   `form:"price"`
	ImageURL    *string  `form:"image_url"`
	Category    *string  `form:"category"`
	Collection  *string  `form:"collection"`
	Sizes       []string `form:"sizes"`
	InStock     *bool    `form:"in_stock"`
}

func (f productForm) update() models.ProductUpdate {
	u := models.ProductUpdate{
		Name:        f.Name,
		Description: f.Description,
		Price:       f.Price,
		ImageURL:    f.ImageURL,
		Category:    f.Category,
		Collection:  f.Collection,
		InStock:     f.InStock,
	}
	if f.Sizes != nil {
		sizes := splitSizes(f.Sizes)
		u.Sizes = &sizes
	}
	return u
}

// splitSizes accepts both repeated fields and a single comma separated one.
func splitSizes(values []string) []string {
	sizes := make([]string, 0, len(values))
	for _, v := range values {
		for _, s := range strings.Split(v, ",") {
			if s = strings.TrimSpace(s); s != "" {
				sizes = append(sizes, s)
			}
		}
	}
	return sizes
}

func isMultipart(c *fiber.Ctx) bool {
	return strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEMultipartForm)
}

// parseProduct reads a product mutation from either a JSON or a multipart
// body. The image, if any, is only present for multipart bodies.
func (h *ProductHandler) parseProduct(c *fiber.Ctx) (models.ProductUpdate, *cloudinary.File, error) {
	if !isMultipart(c) {
		var update models.ProductUpdate
		if err := c.BodyParser(&update); err != nil {
			return models.ProductUpdate{}, nil, err
		}
		return update, nil, nil
	}

	var form productForm
	if err := c.BodyParser(&form); err != nil {
		return models.ProductUpdate{}, nil, err
	}
	image, err := formImage(c)
	if err != nil {
		return models.ProductUpdate{}, nil, err
	}
	return form.update(), image, nil
}

// formImage returns the uploaded picture, or nil when none was sent.
func formImage(c *fiber.Ctx) (*cloudinary.File, error) {
	form, err := c.MultipartForm()
	if err != nil {
		return nil, err
	}
	headers := form.File[imageField]
	if len(headers) == 0 {
		return nil, nil
	}
	header := headers[0]

	f, err := header.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	content, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}
	return &cloudinary.File{Name: header.Filename, Content: content}, nil
}

// HandleCreateProduct creates a product. New products are in stock unless
// the request says otherwise.
func (h *ProductHandler) HandleCreateProduct(c *fiber.Ctx) error {
	update, image, err := h.parseProduct(c)
	if err != nil {
		return badBody(c, err)
	}

	product := models.Product{InStock: true}
	update.Apply(&product)
	if handled, err := validate(c, h.validate, product); handled {
		return err
	}

	created, err := h.service.CreateProduct(c.UserContext(), &product, image)
	if err != nil {
		return failed(c, h.logger, "Could not create product", err)
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}

// HandleUpdateProduct applies a partial update. Fields absent from the
// body keep their stored value.
func (h *ProductHandler) HandleUpdateProduct(c *fiber.Ctx) error {
	update, image, err := h.parseProduct(c)
	if err != nil {
		return badBody(c, err)
	}
	if handled, err := validate(c, h.validate, update); handled {
		return err
	}

	updated, err := h.service.UpdateProduct(c.UserContext(), c.Params("id"), update, image)
	if err != nil {
		return failed(c, h.logger, "Could not update product", err)
	}
	return c.JSON(updated)
}

// HandleDeleteProduct deletes a product.
func (h *ProductHandler) HandleDeleteProduct(c *fiber.Ctx) error {
	if err := h.service.DeleteProduct(c.UserContext(), c.Params("id")); err != nil {
		return failed(c, h.logger, "Could not delete product", err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// HandleUploadImage hosts a picture on its own and returns its URL.
func (h *ProductHandler) HandleUploadImage(c *fiber.Ctx) error {
	image, err := formImage(c)
	if err != nil {
		return badBody(c, err)
	}
	if image == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "An image file is required in the 'image' field",
		})
	}

	url, err := h.service.UploadImage(c.UserContext(), *image)
	if err != nil {
		return failed(c, h.logger, "Could not upload image", err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"image_url": url})
}

// HandleReload re-reads the catalog from the database.
func (h *ProductHandler) HandleReload(c *fiber.Ctx) error {
	if err := h.service.Load(c.UserContext()); err != nil {
		return failed(c, h.logger, "Could not reload products", err)
	}
	return c.JSON(h.service.State())
}
