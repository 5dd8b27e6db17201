package main

import (
	"errors"
	"io"
	"net/http"
	"os"

	"chain-lens/internal/coreerr"
	"chain-lens/pkg/report"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	port := os.Getenv("PORT")
	if port == "" {
		port = "3000"
	}

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(ginZapLogger(logger), gin.Recovery())

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type"},
		AllowCredentials: true,
	}))

	r.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	r.POST("/api/analyze", handleAnalyze(logger))
	r.POST("/api/analyze_block", handleAnalyzeBlock(logger))

	if _, err := os.Stat("web/build"); err == nil {
		r.Static("/static", "web/build/static")
		r.StaticFile("/", "web/build/index.html")
		r.NoRoute(func(c *gin.Context) {
			c.File("web/build/index.html")
		})
	} else {
		r.GET("/", func(c *gin.Context) {
			c.Data(http.StatusOK, "text/html", []byte(fallbackHTML))
		})
	}

	logger.Info("listening", zap.String("addr", "http://127.0.0.1:"+port))
	if err := r.Run(":" + port); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

// ginZapLogger adapts zap to Gin's request-logging middleware slot,
// replacing gin.Default()'s bundled text logger.
func ginZapLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
		)
	}
}

func handleAnalyze(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var fixture report.Fixture
		if err := c.ShouldBindJSON(&fixture); err != nil {
			code := coreerr.CodeInvalidJSON
			var verrs validator.ValidationErrors
			if errors.As(err, &verrs) {
				code = coreerr.CodeInvalidFixture
			}
			c.JSON(http.StatusBadRequest, report.TransactionOutput{
				OK:    false,
				Error: &report.ErrorInfo{Code: code, Message: err.Error()},
			})
			return
		}

		result, err := report.AnalyzeFixture(fixture)
		if err != nil {
			logger.Warn("analyze failed", zap.Error(err))
			c.JSON(http.StatusBadRequest, report.TransactionOutput{
				OK:    false,
				Error: &report.ErrorInfo{Code: coreerr.CodeOf(err), Message: err.Error()},
			})
			return
		}

		c.JSON(http.StatusOK, result)
	}
}

// handleAnalyzeBlock accepts a multipart form with blk/rev/xor file parts
// and runs every block in the pair through the block report assembler,
// using the library default (non-fatal) merkle-mismatch handling.
func handleAnalyzeBlock(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		blkData, err := readFormFile(c, "blk")
		if err != nil {
			c.JSON(http.StatusBadRequest, report.BlockOutput{
				OK:    false,
				Error: &report.ErrorInfo{Code: coreerr.CodeInvalidBlock, Message: err.Error()},
			})
			return
		}
		revData, err := readFormFile(c, "rev")
		if err != nil {
			c.JSON(http.StatusBadRequest, report.BlockOutput{
				OK:    false,
				Error: &report.ErrorInfo{Code: coreerr.CodeInvalidUndo, Message: err.Error()},
			})
			return
		}
		xorKey, err := readFormFile(c, "xor")
		if err != nil {
			xorKey = nil // xor key is optional; absence means no-op de-obfuscation
		}

		blocks, err := report.AnalyzeBlock(blkData, revData, xorKey, false)
		if err != nil {
			logger.Warn("analyze-block failed", zap.Error(err))
			c.JSON(http.StatusBadRequest, report.BlockOutput{
				OK:    false,
				Error: &report.ErrorInfo{Code: coreerr.CodeOf(err), Message: err.Error()},
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{"ok": true, "blocks": blocks})
	}
}

func readFormFile(c *gin.Context, field string) ([]byte, error) {
	fileHeader, err := c.FormFile(field)
	if err != nil {
		return nil, err
	}
	f, err := fileHeader.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

const fallbackHTML = `<!DOCTYPE html>
<html>
<head>
    <title>Chain Lens - Bitcoin Wire-Format Analyzer</title>
    <style>
        body { font-family: Arial, sans-serif; max-width: 800px; margin: 50px auto; padding: 20px; }
        h1 { color: #f7931a; }
        textarea { width: 100%; height: 200px; font-family: monospace; }
        button { background: #f7931a; color: white; padding: 10px 20px; border: none; cursor: pointer; }
        pre { background: #f5f5f5; padding: 15px; overflow-x: auto; }
    </style>
</head>
<body>
    <h1>Chain Lens</h1>
    <p>Paste a transaction fixture JSON below:</p>
    <textarea id="input" placeholder='{"network":"mainnet","raw_tx":"...","prevouts":[...]}'></textarea>
    <br><br>
    <button onclick="analyze()">Analyze Transaction</button>
    <h2>Result:</h2>
    <pre id="output">Results will appear here...</pre>

    <script>
        async function analyze() {
            const input = document.getElementById('input').value;
            const output = document.getElementById('output');

            try {
                const response = await fetch('/api/analyze', {
                    method: 'POST',
                    headers: {'Content-Type': 'application/json'},
                    body: input
                });
                const result = await response.json();
                output.textContent = JSON.stringify(result, null, 2);
            } catch (err) {
                output.textContent = 'Error: ' + err.message;
            }
        }
    </script>
</body>
</html>`
