package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	documentai "cloud.google.com/go/documentai/apiv1"
	"cloud.google.com/go/firestore"
	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
	gcs "cloud.google.com/go/storage"
	vision "cloud.google.com/go/vision/v2/apiv1"
	"github.com/google/generative-ai-go/genai"
	"github.com/improbable-eng/grpc-web/go/grpcweb"
	"github.com/ridge/must/v2"
	"github.com/sashabaranov/go-openai"
	log "github.com/sirupsen/logrus"
	"google.golang.org/api/option"
	"google.golang.org/grpc"

	"github.com/visionex-project/pdftrans/grpc/impl"
	implDocumentai "github.com/visionex-project/pdftrans/grpc/impl/documentai"
	implGenai "github.com/visionex-project/pdftrans/grpc/impl/genai"
	"github.com/visionex-project/pdftrans/grpc/impl/inpaint"
	implOpenai "github.com/visionex-project/pdftrans/grpc/impl/openai"
	"github.com/visionex-project/pdftrans/grpc/impl/raster"
	"github.com/visionex-project/pdftrans/grpc/impl/record"
	"github.com/visionex-project/pdftrans/grpc/impl/storage"
	"github.com/visionex-project/pdftrans/grpc/impl/tesseract"
	"github.com/visionex-project/pdftrans/grpc/impl/vertex"
	implVision "github.com/visionex-project/pdftrans/grpc/impl/vision"
	pb "github.com/visionex-project/pdftrans/grpc/pb"
	"github.com/visionex-project/pdftrans/pkg/env"
	"github.com/visionex-project/pdftrans/pkg/extract"
	"github.com/visionex-project/pdftrans/pkg/font"
	yaHttp "github.com/visionex-project/pdftrans/pkg/http"
	"github.com/visionex-project/pdftrans/pkg/mapping"
	yaOpenai "github.com/visionex-project/pdftrans/pkg/openai"
	"github.com/visionex-project/pdftrans/pkg/pipeline"
	"github.com/visionex-project/pdftrans/pkg/render"
)

// Upload size limit for a single PDF.
const MAX_MESSAGE_SIZE = 64 * 1024 * 1024

func main() {
	env.Load()
	configureLogging()

	ctx := context.Background()
	secrets := &secretSource{ctx: ctx}
	defer secrets.Close()

	translator := translationChain(ctx, secrets)
	recognizer := ocrRecognizer(ctx)
	rasterizer := raster.New(env.StringVariable("PDFTOPPM_PATH", raster.DEFAULT_BINARY))
	if !rasterizer.Available() {
		log.Warnf("pdftoppm not found; pages cannot be rendered")
	}

	renderer := render.New(rasterizer, inpainter(), fontProvider(), renderOptions())
	mapper := mapping.New(translator, mappingOptions())
	pipelineConfig := pipeline.DefaultConfig()
	pipelineConfig.PageConcurrency = env.IntVariable("PAGE_CONCURRENCY", pipeline.DEFAULT_PAGE_CONCURRENCY)
	pipelineConfig.OCRDPI = env.FloatVariable("OCR_DPI", pipeline.DEFAULT_OCR_DPI)
	pipelineConfig.AssemblePDF = env.BoolVariable("ASSEMBLE_PDF", true)
	documentPipeline := pipeline.New(nil, recognizer, rasterizer, mapper, renderer, pipelineConfig)

	defaultMode := must.OK1(mapping.ParseMode(env.StringVariable("MAPPING_MODE", string(mapping.MODE_WHOLE_TEXT))))
	server := impl.New(
		documentPipeline,
		storageBackend(ctx),
		recordBackend(ctx),
		impl.Defaults{
			TargetLanguage: env.StringVariable("TARGET_LANGUAGE", "ko"),
			Mode:           defaultMode,
		},
	)

	grpcServer := grpc.NewServer(
		grpc.ForceServerCodec(pb.Codec{}),
		grpc.MaxRecvMsgSize(MAX_MESSAGE_SIZE),
		grpc.MaxSendMsgSize(MAX_MESSAGE_SIZE),
	)
	pb.RegisterPdfTranslatorServer(grpcServer, server)

	go runGrpcServer(grpcServer, env.RequiredIntVariable("GRPC_PORT"))
	runGrpcWebServer(grpcServer, server, env.RequiredIntVariable("WEB_PORT"), env.StringVariable("PDFTRANS_UI_URL", ""))
}

func configureLogging() {
	if level, err := log.ParseLevel(env.StringVariable("LOG_LEVEL", "info")); err == nil {
		log.SetLevel(level)
	}
	if env.StringVariable("LOG_FORMAT", "text") == "json" {
		log.SetFormatter(&log.JSONFormatter{})
	}
}

func translationChain(ctx context.Context, secrets *secretSource) mapping.Translator {
	retry := func(translator mapping.Translator) mapping.Translator {
		return mapping.Retrying{
			Translator: translator,
			Interval:   time.Second / 2,
			MaxRetries: uint64(env.IntVariable("TRANSLATION_RETRIES", 3)),
		}
	}

	chain := mapping.Chain{}
	for _, name := range env.ListVariable("TRANSLATION_PROVIDERS", []string{"openai", "gemini"}) {
		switch name {
		case "openai":
			key := secrets.value("OPENAI_API_KEY", "OPENAI_KEY_SECRET_NAME")
			translator := implOpenai.New(yaOpenai.NewAdapter(openai.NewClient(key)), env.StringVariable("OPENAI_MODEL", implOpenai.DEFAULT_MODEL))
			chain = append(chain, mapping.Provider{Name: name, Translator: mapping.Chunked{Translator: retry(translator), MaxChars: mapping.PRIMARY_CHUNK_CHARS}})
		case "gemini":
			key := secrets.value("GEMINI_API_KEY", "GEMINI_API_KEY_SECRET_NAME")
			genaiClient := implGenai.New(must.OK1(genai.NewClient(ctx, option.WithAPIKey(key))))
			translator := implOpenai.New(genaiClient, env.StringVariable("GEMINI_MODEL", string(implGenai.GenaiModelFlash)))
			chain = append(chain, mapping.Provider{Name: name, Translator: mapping.Chunked{Translator: retry(translator), MaxChars: mapping.FALLBACK_CHUNK_CHARS}})
		case "vertex":
			translator := must.OK1(vertex.New(ctx,
				env.RequiredStringVariable("GCP_PROJECT_ID"),
				env.StringVariable("VERTEX_LOCATION", vertex.DEFAULT_LOCATION),
				env.StringVariable("VERTEX_MODEL", vertex.DEFAULT_MODEL),
			))
			chain = append(chain, mapping.Provider{Name: name, Translator: mapping.Chunked{Translator: retry(translator), MaxChars: mapping.FALLBACK_CHUNK_CHARS}})
		default:
			panic(fmt.Sprintf("unknown translation provider %q", name))
		}
	}
	return chain
}

func ocrRecognizer(ctx context.Context) extract.Recognizer {
	switch provider := env.StringVariable("OCR_PROVIDER", "none"); provider {
	case "none":
		return nil
	case "vision":
		visionClient := must.OK1(vision.NewImageAnnotatorClient(ctx))
		return implVision.NewRecognizer(visionClient)
	case "documentai":
		documentaiClient := must.OK1(documentai.NewDocumentProcessorClient(ctx, option.WithEndpoint(env.RequiredStringVariable("DOCUMENTAI_ENDPOINT"))))
		return implDocumentai.NewRecognizer(documentaiClient, implDocumentai.Processor{
			ProjectID:   env.RequiredStringVariable("GCP_PROJECT_ID"),
			Location:    env.RequiredStringVariable("DOCUMENTAI_LOCATION"),
			ProcessorID: env.RequiredStringVariable("DOCUMENTAI_PROCESSOR_ID"),
		})
	case "tesseract":
		return must.OK1(tesseract.New(env.StringVariable("TESSERACT_LANGUAGES", "eng")))
	default:
		panic(fmt.Sprintf("unknown OCR provider %q", provider))
	}
}

func inpainter() render.Inpainter {
	telea, err := inpaint.New()
	if err != nil {
		log.Printf("Failed to enable OpenCV inpainting, using the built-in inpainter: %v", err)
		return render.FastMarching{}
	}
	return telea
}

func fontProvider() font.FontProvider {
	fonts, err := font.New(env.StringVariable("FONT_DIR", "grpc/cmd/fonts"))
	if err != nil {
		log.Printf("Failed to load fonts, falling back to Go fonts: %v", err)
		return must.OK1(font.NewGoFonts())
	}
	return fonts
}

func renderOptions() render.Options {
	options := render.DefaultOptions()
	options.DPI = env.FloatVariable("RENDER_DPI", options.DPI)
	options.Upscale = env.FloatVariable("RENDER_UPSCALE", options.Upscale)
	options.AnchorToBlock = env.BoolVariable("RENDER_ANCHOR_BLOCKS", false)
	options.DebugOverlay = env.BoolVariable("RENDER_DEBUG_OVERLAY", false)
	return options
}

func mappingOptions() mapping.Options {
	options := mapping.DefaultOptions()
	options.Concurrency = env.IntVariable("TRANSLATION_CONCURRENCY", options.Concurrency)
	options.FuzzyThreshold = env.FloatVariable("FUZZY_THRESHOLD", options.FuzzyThreshold)
	return options
}

func storageBackend(ctx context.Context) impl.Storage {
	switch backend := env.StringVariable("STORAGE_BACKEND", "gcs"); backend {
	case "gcs":
		return impl.Storage{
			Client:       storage.New(must.OK1(gcs.NewClient(ctx))),
			UploadBucket: env.RequiredStringVariable("GCP_UPLOAD_BUCKET"),
			RenderBucket: env.RequiredStringVariable("GCP_RENDER_BUCKET"),
		}
	case "local":
		return impl.Storage{
			Client:       storage.NewLocal(env.StringVariable("LOCAL_STORAGE_DIR", "data")),
			UploadBucket: "uploads",
			RenderBucket: "renders",
		}
	default:
		panic(fmt.Sprintf("unknown storage backend %q", backend))
	}
}

func recordBackend(ctx context.Context) record.Store {
	switch backend := env.StringVariable("RECORD_BACKEND", "firestore"); backend {
	case "firestore":
		return record.NewFirestore(must.OK1(firestore.NewClient(ctx, env.RequiredStringVariable("GCP_PROJECT_ID"))))
	case "none":
		log.Warnf("Documents are kept in memory and lost on restart")
		return record.NewMemory()
	default:
		panic(fmt.Sprintf("unknown record backend %q", backend))
	}
}

func runGrpcServer(grpcServer *grpc.Server, port int) {
	log.Printf("pdftrans gRPC server listening on port %d", port)
	must.OK(grpcServer.Serve(must.OK1(net.Listen("tcp", fmt.Sprintf(":%d", port)))))
}

func runGrpcWebServer(grpcServer *grpc.Server, artifacts yaHttp.ArtifactReader, port int, url string) {
	grpcwebServer := grpcweb.WrapServer(grpcServer,
		grpcweb.WithOriginFunc(func(origin string) bool {
			return url == "" || origin == url
		}),
	)

	staticFileDir := env.StringVariable("PDFTRANS_STATIC_FILE_DIR", "")
	defaultHandler := func(w http.ResponseWriter, r *http.Request) {
		if grpcwebServer.IsGrpcWebRequest(r) || grpcwebServer.IsAcceptableGrpcCorsRequest(r) {
			grpcwebServer.ServeHTTP(w, r)
			return
		}
		if staticFileDir == "" {
			http.NotFound(w, r)
			return
		}
		http.ServeFile(w, r, staticFileDir+"/index.html")
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", defaultHandler)
	mux.HandleFunc("GET "+impl.DEFAULT_ARTIFACT_PREFIX+"/{id}/{name}", yaHttp.HandleArtifacts(artifacts))
	if staticFileDir != "" {
		mux.HandleFunc("/assets/", yaHttp.HandleFileServer(http.FileServer(http.Dir(staticFileDir))))
	}
	log.Printf("pdftrans gRPC-web server listening on port %d", port)
	must.OK(http.ListenAndServe(fmt.Sprintf(":%d", port), mux))
}

// secretSource reads API keys from the environment, falling back to GCP Secret Manager.
type secretSource struct {
	ctx    context.Context
	client *secretmanager.Client
}

func (s *secretSource) value(variable string, secretVariable string) string {
	if key := os.Getenv(variable); key != "" {
		return key
	}
	if s.client == nil {
		s.client = must.OK1(secretmanager.NewClient(s.ctx))
	}
	return secretFromGCP(s.client, s.ctx, env.RequiredStringVariable(secretVariable))
}

func (s *secretSource) Close() {
	if s.client != nil {
		s.client.Close()
	}
}

func secretFromGCP(secretmanagerClient *secretmanager.Client, ctx context.Context, secretName string) string {
	secretValue := must.OK1(secretmanagerClient.AccessSecretVersion(ctx, &secretmanagerpb.AccessSecretVersionRequest{
		Name: fmt.Sprintf("projects/%s/secrets/%s/versions/latest",
			env.RequiredStringVariable("GCP_PROJECT_ID"),
			secretName,
		),
	}))
	return strings.TrimSpace(string(secretValue.Payload.Data))
}
