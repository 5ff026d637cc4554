package shader

// Registry names for the built-in shader stages. The renderer links its
// programs from these; disk overrides use the same names as file names.
const (
	PhongVert      = "phong.vert"
	PhongFrag      = "phong.frag"
	ShadowVert     = "shadow_depth.vert"
	ShadowFrag     = "shadow_depth.frag"
	SkyboxVert     = "skybox.vert"
	SkyboxFrag     = "skybox.frag"
	ParticleVert   = "particle.vert"
	ParticleFrag   = "particle.frag"
	FullscreenVert = "fullscreen.vert"
	TonemapFrag    = "post_hdr.frag"
	BrightFrag     = "post_bright.frag"
	BlurFrag       = "blur.frag"
	SSAOFrag       = "ssao.frag"
	SSAOBlurFrag   = "ssao_blur.frag"
	TextVert       = "text.vert"
	TextFrag       = "text.frag"
)

// builtins maps registry names to the GLSL baked into the binary.
// Keys follow the on-disk override convention: <program>.<stage>.
// Sources here carry no NUL terminator; the registry appends it on seed.
var builtins = map[string]string{
	PhongVert:      phongVertSrc,
	PhongFrag:      phongFragSrc,
	ShadowVert:     shadowVertSrc,
	ShadowFrag:     shadowFragSrc,
	SkyboxVert:     skyVertSrc,
	SkyboxFrag:     skyFragSrc,
	ParticleVert:   particleVertSrc,
	ParticleFrag:   particleFragSrc,
	FullscreenVert: fullscreenVertSrc,
	TonemapFrag:    tonemapFragSrc,
	BrightFrag:     brightFragSrc,
	BlurFrag:       blurFragSrc,
	SSAOFrag:       ssaoFragSrc,
	SSAOBlurFrag:   ssaoBlurFragSrc,
	TextVert:       textVertSrc,
	TextFrag:       textFragSrc,
}

// ── Scene program ─────────────────────────────────────────────────────────────

// phongVertSrc: MVP + model transform, world-space position and normal to the
// fragment stage. Also computes fragLightSpacePos for shadow map lookup.
const phongVertSrc = `
#version 410 core
layout(location = 0) in vec3 inPosition;
layout(location = 1) in vec3 inNormal;
layout(location = 2) in vec2 inUV;
layout(location = 3) in vec4 inColor;
layout(location = 4) in vec3 inTangent;
layout(location = 5) in vec3 inBitangent;

// Per-instance data (active only when instanced == true)
// Each mat4 occupies 4 consecutive vec4 attribute slots (one per column).
layout(location = 6)  in vec4 instMVP0;
layout(location = 7)  in vec4 instMVP1;
layout(location = 8)  in vec4 instMVP2;
layout(location = 9)  in vec4 instMVP3;
layout(location = 10) in vec4 instModel0;
layout(location = 11) in vec4 instModel1;
layout(location = 12) in vec4 instModel2;
layout(location = 13) in vec4 instModel3;

uniform mat4 mvp;
uniform mat4 model;
uniform mat4 lightViewProj;
uniform bool instanced;

out vec4 fragColor;
out vec3 fragNormal;
out vec2 fragUV;
out vec3 fragWorldPos;
out vec4 fragLightSpacePos;
out vec3 fragTangent;
out vec3 fragBitangent;

void main() {
    mat4 effectiveMVP;
    mat3 normalMat;
    vec4 worldPos;

    if (instanced) {
        mat4 iMVP   = mat4(instMVP0,   instMVP1,   instMVP2,   instMVP3);
        mat4 iModel = mat4(instModel0, instModel1, instModel2, instModel3);
        effectiveMVP      = iMVP;
        normalMat         = mat3(iModel);
        worldPos          = iModel * vec4(inPosition, 1.0);
        fragLightSpacePos = lightViewProj * worldPos;
    } else {
        effectiveMVP      = mvp;
        normalMat         = mat3(model);
        worldPos          = model * vec4(inPosition, 1.0);
        fragLightSpacePos = lightViewProj * worldPos;
    }

    gl_Position   = effectiveMVP * vec4(inPosition, 1.0);
    fragColor     = inColor;
    fragNormal    = normalMat * inNormal;
    fragUV        = inUV;
    fragWorldPos  = worldPos.xyz;
    fragTangent   = normalMat * inTangent;
    fragBitangent = normalMat * inBitangent;
}
`

// phongFragSrc: dual-path Phong + PBR (Cook-Torrance) with directional +
// point + spot lights. Set usePBR=true for the GGX/Smith/Schlick BRDF.
// Directional light shadows via PCF sampler2DShadow.
const phongFragSrc = `
#version 410 core
in vec4 fragColor;
in vec3 fragNormal;
in vec2 fragUV;
in vec3 fragWorldPos;
in vec4 fragLightSpacePos;
in vec3 fragTangent;
in vec3 fragBitangent;

out vec4 outColor;

// Directional light
uniform vec3  lightDir;
uniform vec3  lightColor;
uniform float lightIntensity;
uniform vec3  ambientColor;

// Point lights (up to 8)
#define MAX_POINT_LIGHTS 8
uniform int   pointLightCount;
uniform vec3  pointLightPos[MAX_POINT_LIGHTS];
uniform vec3  pointLightColor[MAX_POINT_LIGHTS];
uniform float pointLightIntensity[MAX_POINT_LIGHTS];
uniform float pointLightRange[MAX_POINT_LIGHTS];

// Spot lights (up to 4)
#define MAX_SPOT_LIGHTS 4
uniform int   spotLightCount;
uniform vec3  spotLightPos[MAX_SPOT_LIGHTS];
uniform vec3  spotLightDir[MAX_SPOT_LIGHTS];
uniform vec3  spotLightColor[MAX_SPOT_LIGHTS];
uniform float spotLightIntensity[MAX_SPOT_LIGHTS];
uniform float spotLightRange[MAX_SPOT_LIGHTS];
uniform float spotLightInner[MAX_SPOT_LIGHTS];
uniform float spotLightOuter[MAX_SPOT_LIGHTS];

// Camera
uniform vec3 cameraPos;

// Phong material
uniform vec3  matAlbedo;
uniform vec3  matSpecular;
uniform float matShininess;

// PBR material
uniform bool  usePBR;
uniform float matMetallic;
uniform float matRoughness;
uniform vec3  matEmissive;

// Albedo texture (unit 0)
uniform sampler2D albedoTex;
uniform bool      hasTexture;

// Shadow map (unit 1), sampler2DShadow enables hardware PCF comparison
uniform sampler2DShadow shadowMap;
uniform bool            hasShadows;

// Normal map (unit 2), tangent-space RGB normal map
uniform sampler2D normalTex;
uniform bool      hasNormalTex;

// PBR metallic-roughness texture (unit 3): G=roughness, B=metallic (glTF convention)
uniform sampler2D metallicRoughnessTex;
uniform bool      hasMetallicRoughnessTex;

// Emissive texture (unit 4): multiplied with matEmissive
uniform sampler2D emissiveTex;
uniform bool      hasEmissiveTex;

// When true, skip all lighting and output raw base color
uniform bool unlit;

// Exponential depth fog
uniform bool  fogEnabled;
uniform vec3  fogColor;
uniform float fogDensity; // 0 = no fog; typical range 0.01-0.15

// Sky-based IBL: hemisphere gradient matching the procedural skybox
uniform bool useIBL;
uniform vec3 iblZenith;   // sky colour straight up
uniform vec3 iblHorizon;  // sky colour at eye level
uniform vec3 iblGround;   // sky colour below horizon

float calcShadow() {
    vec3 p = fragLightSpacePos.xyz / fragLightSpacePos.w;
    p = p * 0.5 + 0.5;
    if (p.z > 1.0) return 1.0;
    float shadow = 0.0;
    float ts = 1.0 / 2048.0;
    for (int x = -1; x <= 1; x++) {
        for (int y = -1; y <= 1; y++) {
            shadow += texture(shadowMap, vec3(p.xy + vec2(float(x), float(y)) * ts, p.z - 0.002));
        }
    }
    return shadow / 9.0;
}

vec3 calcSpecular(vec3 N, vec3 L, vec3 V) {
    vec3 H = normalize(L + V);
    return matSpecular * pow(max(dot(N, H), 0.0), matShininess);
}

const float PI = 3.14159265359;

float DistributionGGX(vec3 N, vec3 H, float roughness) {
    float a  = roughness * roughness;
    float a2 = a * a;
    float NdH = max(dot(N, H), 0.0);
    float d   = NdH * NdH * (a2 - 1.0) + 1.0;
    return a2 / (PI * d * d);
}

float GeometrySchlickGGX(float cosTheta, float roughness) {
    float r = roughness + 1.0;
    float k = (r * r) / 8.0;
    return cosTheta / (cosTheta * (1.0 - k) + k);
}

float GeometrySmith(float NdV, float NdL, float roughness) {
    return GeometrySchlickGGX(NdV, roughness) * GeometrySchlickGGX(NdL, roughness);
}

vec3 FresnelSchlick(float cosTheta, vec3 F0) {
    return F0 + (1.0 - F0) * pow(clamp(1.0 - cosTheta, 0.0, 1.0), 5.0);
}

// Fresnel with roughness remapping for the IBL diffuse/specular split
vec3 FresnelSchlickRoughness(float cosTheta, vec3 F0, float roughness) {
    return F0 + (max(vec3(1.0 - roughness), F0) - F0) * pow(clamp(1.0 - cosTheta, 0.0, 1.0), 5.0);
}

// Sample the procedural sky gradient in direction dir (must be normalised).
vec3 sampleSkyGradient(vec3 dir) {
    float y = clamp(dir.y, -1.0, 1.0);
    if (y >= 0.0) return mix(iblHorizon, iblZenith,  y);
    else          return mix(iblHorizon, iblGround,  -y);
}

// Evaluate one Cook-Torrance lobe. L = unit vector toward light, rad = light radiance.
vec3 evalPBR(vec3 N, vec3 V, vec3 L, vec3 rad, vec3 albedo, float metallic, float roughness, vec3 F0) {
    float NdL = max(dot(N, L), 0.0);
    if (NdL <= 0.0) return vec3(0.0);

    vec3  H   = normalize(V + L);
    float NdV = max(dot(N, V), 0.0);

    float D  = DistributionGGX(N, H, roughness);
    float G  = GeometrySmith(NdV, NdL, roughness);
    vec3  F  = FresnelSchlick(max(dot(H, V), 0.0), F0);

    vec3 kD       = (vec3(1.0) - F) * (1.0 - metallic);
    vec3 specular = D * G * F / max(4.0 * NdV * NdL, 0.001);

    return (kD * albedo / PI + specular) * rad * NdL;
}

void main() {
    // World-space normal: from normal map (TBN) or interpolated vertex normal
    vec3 N;
    if (hasNormalTex) {
        vec3 T  = normalize(fragTangent);
        vec3 B  = normalize(fragBitangent);
        vec3 Nv = normalize(fragNormal);
        mat3 TBN = mat3(T, B, Nv);
        N = normalize(TBN * (texture(normalTex, fragUV).rgb * 2.0 - 1.0));
    } else {
        N = normalize(fragNormal);
    }
    vec3 V = normalize(cameraPos - fragWorldPos);

    // Base color: vertex color * material albedo (* texture if present)
    vec4 baseColor = fragColor * vec4(matAlbedo, 1.0);
    if (hasTexture) {
        baseColor *= texture(albedoTex, fragUV);
    }

    // Unlit: skip all lighting
    if (unlit) {
        outColor = baseColor;
        return;
    }

    float shadowFactor = hasShadows ? calcShadow() : 1.0;

    if (usePBR) {
        float metallic  = matMetallic;
        float roughness = clamp(matRoughness, 0.04, 1.0);
        if (hasMetallicRoughnessTex) {
            vec4 mr  = texture(metallicRoughnessTex, fragUV);
            roughness = clamp(mr.g, 0.04, 1.0);
            metallic  = mr.b;
        }

        vec3 albedo = baseColor.rgb;
        vec3 F0     = mix(vec3(0.04), albedo, metallic);

        // Ambient: sky-based IBL or flat fallback
        vec3 color;
        if (useIBL) {
            // Diffuse irradiance: sky gradient sampled at surface normal direction
            vec3 irradiance = sampleSkyGradient(N);
            vec3 F_ibl = FresnelSchlickRoughness(max(dot(N, V), 0.0), F0, roughness);
            vec3 kD    = (vec3(1.0) - F_ibl) * (1.0 - metallic);
            vec3 diffuseIBL = irradiance * albedo * kD;
            // Specular IBL: sky gradient in reflected direction, fades with roughness
            vec3 R = reflect(-V, N);
            vec3 specIrradiance = sampleSkyGradient(R);
            float specStrength  = (1.0 - roughness * roughness);
            vec3 specularIBL    = specIrradiance * F_ibl * specStrength;
            color = diffuseIBL + specularIBL;
        } else {
            color = ambientColor * albedo * (1.0 - 0.5 * metallic);
        }

        // Directional light
        vec3 L_dir = normalize(-lightDir);
        vec3 dirRad = lightColor * lightIntensity * shadowFactor;
        color += evalPBR(N, V, L_dir, dirRad, albedo, metallic, roughness, F0);

        // Point lights
        for (int i = 0; i < pointLightCount && i < MAX_POINT_LIGHTS; i++) {
            vec3  toLight = pointLightPos[i] - fragWorldPos;
            float dist    = length(toLight);
            float range   = max(pointLightRange[i], 0.001);
            float atten   = clamp(1.0 - (dist*dist)/(range*range), 0.0, 1.0);
            atten *= atten;
            vec3 ptRad = pointLightColor[i] * pointLightIntensity[i] * atten;
            color += evalPBR(N, V, normalize(toLight), ptRad, albedo, metallic, roughness, F0);
        }

        // Spot lights
        for (int i = 0; i < spotLightCount && i < MAX_SPOT_LIGHTS; i++) {
            vec3  toLight = spotLightPos[i] - fragWorldPos;
            float dist    = length(toLight);
            float range   = max(spotLightRange[i], 0.001);
            float atten   = clamp(1.0 - (dist*dist)/(range*range), 0.0, 1.0);
            atten *= atten;
            vec3  L     = normalize(toLight);
            float theta = dot(L, normalize(-spotLightDir[i]));
            float eps   = spotLightInner[i] - spotLightOuter[i];
            float cone  = clamp((theta - spotLightOuter[i]) / eps, 0.0, 1.0);
            vec3 spRad = spotLightColor[i] * spotLightIntensity[i] * atten * cone;
            color += evalPBR(N, V, L, spRad, albedo, metallic, roughness, F0);
        }

        // Emissive
        vec3 emissive = matEmissive;
        if (hasEmissiveTex) {
            emissive *= texture(emissiveTex, fragUV).rgb;
        }
        color += emissive;

        if (fogEnabled) {
            float fogDist = length(fragWorldPos - cameraPos);
            float fogF    = clamp(exp(-fogDensity * fogDist), 0.0, 1.0);
            color = mix(fogColor, color, fogF);
        }
        outColor = vec4(color, baseColor.a);
        return;
    }

    // Phong path
    vec3 color;
    if (useIBL) {
        color = sampleSkyGradient(N) * baseColor.rgb * 0.35;
    } else {
        color = ambientColor * baseColor.rgb;
    }

    // Directional light
    vec3 L_dir = normalize(-lightDir);
    float NdL  = max(dot(N, L_dir), 0.0);
    color += shadowFactor * lightColor * lightIntensity * NdL * baseColor.rgb;
    if (NdL > 0.0) {
        color += shadowFactor * lightColor * lightIntensity * calcSpecular(N, L_dir, V);
    }

    // Point lights
    for (int i = 0; i < pointLightCount && i < MAX_POINT_LIGHTS; i++) {
        vec3  toLight = pointLightPos[i] - fragWorldPos;
        float dist    = length(toLight);
        float range   = max(pointLightRange[i], 0.001);
        float atten   = clamp(1.0 - (dist * dist) / (range * range), 0.0, 1.0);
        atten *= atten;
        vec3  L_pt = normalize(toLight);
        float NdL2 = max(dot(N, L_pt), 0.0);
        color += pointLightColor[i] * pointLightIntensity[i] * atten * NdL2 * baseColor.rgb;
        if (NdL2 > 0.0) {
            color += pointLightColor[i] * pointLightIntensity[i] * atten * calcSpecular(N, L_pt, V);
        }
    }

    // Spot lights
    for (int i = 0; i < spotLightCount && i < MAX_SPOT_LIGHTS; i++) {
        vec3  toLight = spotLightPos[i] - fragWorldPos;
        float dist    = length(toLight);
        float range   = max(spotLightRange[i], 0.001);
        float atten   = clamp(1.0 - (dist * dist) / (range * range), 0.0, 1.0);
        atten *= atten;
        vec3  L     = normalize(toLight);
        float theta = dot(L, normalize(-spotLightDir[i]));
        float eps   = spotLightInner[i] - spotLightOuter[i];
        float cone  = clamp((theta - spotLightOuter[i]) / eps, 0.0, 1.0);
        float NdL3  = max(dot(N, L), 0.0);
        float contrib = atten * cone * spotLightIntensity[i];
        color += spotLightColor[i] * contrib * NdL3 * baseColor.rgb;
        if (NdL3 > 0.0) {
            color += spotLightColor[i] * contrib * calcSpecular(N, L, V);
        }
    }

    if (fogEnabled) {
        float fogDist = length(fragWorldPos - cameraPos);
        float fogF    = clamp(exp(-fogDensity * fogDist), 0.0, 1.0);
        color = mix(fogColor, color, fogF);
    }
    outColor = vec4(color, baseColor.a);
}
`

// ── Shadow depth program ──────────────────────────────────────────────────────

// depth-only vertex shader for the shadow map pass
const shadowVertSrc = `
#version 410 core
layout(location = 0) in vec3 inPosition;
uniform mat4 lightMVP;
void main() {
    gl_Position = lightMVP * vec4(inPosition, 1.0);
}
`

// depth-only fragment shader (OpenGL writes depth implicitly)
const shadowFragSrc = `
#version 410 core
void main() {}
`

// ── Skybox program ────────────────────────────────────────────────────────────

// skyVertSrc transforms cube vertices with a view matrix that has its
// translation stripped, then forces depth = 1.0 via the xyww trick.
const skyVertSrc = `
#version 410 core
layout(location = 0) in vec3 inPosition;

uniform mat4 skyVP;

out vec3 fragDir;

void main() {
    fragDir = inPosition;
    vec4 pos = skyVP * vec4(inPosition, 1.0);
    // xyww: after perspective divide z/w = w/w = 1.0 (far plane)
    gl_Position = pos.xyww;
}
`

// skyFragSrc: gradient based on the fragment's vertical direction.
// Above the horizon lerp horizon to zenith, below lerp horizon to ground.
const skyFragSrc = `
#version 410 core
in vec3 fragDir;
out vec4 outColor;

uniform vec3 zenith;
uniform vec3 horizon;
uniform vec3 ground;

void main() {
    float t = normalize(fragDir).y;     // -1 (down) to +1 (up)

    vec3 color;
    if (t >= 0.0) {
        // Subtle power curve makes the zenith transition feel natural
        color = mix(horizon, zenith, pow(t, 0.4));
    } else {
        // Ground fades in quickly below the horizon
        color = mix(horizon, ground, min(-t * 3.0, 1.0));
    }
    outColor = vec4(color, 1.0);
}
`

// ── Particle program ──────────────────────────────────────────────────────────

// Billboard vertex shader: receives pre-built world-space quad corners from CPU.
const particleVertSrc = `
#version 410 core
layout(location = 0) in vec3 inPos;
layout(location = 1) in vec2 inUV;
layout(location = 2) in vec4 inColor;

uniform mat4 vp;

out vec2  fragUV;
out vec4  fragColor;

void main() {
    gl_Position = vp * vec4(inPos, 1.0);
    fragUV      = inUV;
    fragColor   = inColor;
}
`

// Procedural soft-circle fragment shader (no texture required).
// UV (0,1)^2 mapped so centre=0.5; alpha rolls off quadratically at the edge.
const particleFragSrc = `
#version 410 core
in vec2 fragUV;
in vec4 fragColor;

out vec4 outColor;

uniform sampler2D particleTex;
uniform bool      hasParticleTex;

void main() {
    vec4 col = fragColor;
    if (hasParticleTex) {
        col *= texture(particleTex, fragUV);
    } else {
        // Soft-circle: squared distance from centre, fade at edge
        float d = length(fragUV - vec2(0.5)) * 2.0;
        col.a  *= clamp(1.0 - d * d, 0.0, 1.0);
    }
    outColor = col;
}
`

// ── Fullscreen passes ─────────────────────────────────────────────────────────

// fullscreenVertSrc: fullscreen triangle via gl_VertexID (no VBO needed).
// Shared by the tonemap, bright-pass, blur and SSAO stages.
const fullscreenVertSrc = `
#version 410 core
out vec2 fragUV;
void main() {
    const vec2 pos[3] = vec2[3](
        vec2(-1.0, -1.0),
        vec2( 3.0, -1.0),
        vec2(-1.0,  3.0)
    );
    gl_Position = vec4(pos[gl_VertexID], 0.0, 1.0);
    fragUV      = pos[gl_VertexID] * 0.5 + 0.5;
}
`

// tonemapFragSrc: exposure, Reinhard tone mapping, gamma 2.2, optional bloom
// add, optional SSAO.
const tonemapFragSrc = `
#version 410 core
in  vec2 fragUV;
out vec4 outColor;

uniform sampler2D hdrBuffer;  // unit 0
uniform sampler2D bloomTex;   // unit 1
uniform sampler2D aoTex;      // unit 2 (SSAO)
uniform float     exposure;
uniform float     bloomStrength;
uniform bool      hasBloom;
uniform bool      hasAO;
uniform float     aoStrength;

void main() {
    vec3 hdr = texture(hdrBuffer, fragUV).rgb;

    if (hasBloom) {
        hdr += texture(bloomTex, fragUV).rgb * bloomStrength;
    }

    // Apply SSAO occlusion (modulates HDR before tone-mapping so it stays in linear space)
    if (hasAO) {
        float ao = texture(aoTex, fragUV).r;
        hdr *= mix(1.0, ao, aoStrength);
    }

    // Exposure, then Reinhard, then gamma 2.2
    vec3 mapped = vec3(1.0) - exp(-hdr * exposure);
    mapped = pow(mapped, vec3(1.0 / 2.2));

    outColor = vec4(mapped, 1.0);
}
`

// brightFragSrc extracts pixels whose luminance exceeds the threshold.
const brightFragSrc = `
#version 410 core
in  vec2 fragUV;
out vec4 outColor;

uniform sampler2D hdrBuffer;
uniform float     threshold;

void main() {
    vec3  color = texture(hdrBuffer, fragUV).rgb;
    float luma  = dot(color, vec3(0.2126, 0.7152, 0.0722));
    outColor = vec4(color * step(threshold, luma), 1.0);
}
`

// blurFragSrc: single-axis 5-tap Gaussian blur.
// texelDir = (1/w, 0) for horizontal, (0, 1/h) for vertical.
const blurFragSrc = `
#version 410 core
in  vec2 fragUV;
out vec4 outColor;

uniform sampler2D blurTex;
uniform vec2      texelDir;

void main() {
    const float w[5] = float[](0.0625, 0.25, 0.375, 0.25, 0.0625);
    vec3 result = vec3(0.0);
    for (int i = -2; i <= 2; i++) {
        result += texture(blurTex, fragUV + float(i) * texelDir).rgb * w[i + 2];
    }
    outColor = vec4(result, 1.0);
}
`

// ssaoFragSrc reconstructs view-space position from the depth buffer and
// accumulates hemisphere occlusion using a precomputed random kernel.
const ssaoFragSrc = `
#version 410 core
in  vec2 fragUV;
out vec4 outAO;

uniform sampler2D depthTex;   // unit 0 — scene depth [0,1]
uniform sampler2D noiseTex;   // unit 1 — 4×4 XY rotation noise
uniform vec3  kernel[64];
uniform mat4  proj;
uniform mat4  invProj;
uniform float radius;
uniform float bias;
uniform vec2  noiseScale;     // vec2(screenW/4, screenH/4) for tiling

// Reconstruct view-space position from a UV + depth sample.
vec3 viewPos(vec2 uv) {
    float d  = texture(depthTex, uv).r * 2.0 - 1.0; // [0,1] → NDC [-1,1]
    vec4 ndc = vec4(uv * 2.0 - 1.0, d, 1.0);
    vec4 vp  = invProj * ndc;
    return vp.xyz / vp.w;
}

void main() {
    // Skip background (depth at or beyond far plane)
    if (texture(depthTex, fragUV).r >= 0.9999) { outAO = vec4(1.0); return; }

    vec3 pos = viewPos(fragUV);

    // Build surface normal from depth derivatives (view-space)
    vec3 N = normalize(cross(dFdx(pos), dFdy(pos)));
    // Ensure N faces toward the camera (origin in view space)
    if (dot(N, -pos) < 0.0) N = -N;

    // Random tangent from the tiled noise texture (XY in [-1,1], Z=0)
    vec3 rnd = texture(noiseTex, fragUV * noiseScale).xyz;
    rnd.z = 0.0;

    // Gram-Schmidt TBN to rotate the kernel to the surface hemisphere
    vec3 T   = normalize(rnd - N * dot(rnd, N));
    vec3 B   = cross(N, T);
    mat3 TBN = mat3(T, B, N);

    float occ = 0.0;
    for (int i = 0; i < 64; i++) {
        // Rotate kernel sample into view space and offset from fragment position
        vec3 s = pos + TBN * kernel[i] * radius;

        // Project sample into NDC then screen UV
        vec4 off = proj * vec4(s, 1.0);
        off.xyz /= off.w;
        vec2 suv = clamp(off.xy * 0.5 + 0.5, 0.001, 0.999);

        // Get the actual geometry depth at the sample's screen position
        float geoZ = viewPos(suv).z;

        // Range check prevents occlusion from distant geometry
        float rng = smoothstep(0.0, 1.0, radius / max(abs(pos.z - geoZ), 0.0001));

        // Occluded when geometry is closer to camera than the sample point
        // (in view space: larger z = closer, so geoZ >= sampleZ means occluded)
        occ += (geoZ >= s.z + bias ? 1.0 : 0.0) * rng;
    }

    outAO = vec4(1.0 - occ / 64.0, 0.0, 0.0, 1.0);
}
`

// ssaoBlurFragSrc applies a 5×5 box blur to reduce SSAO noise.
const ssaoBlurFragSrc = `
#version 410 core
in  vec2 fragUV;
out vec4 outAO;

uniform sampler2D ssaoTex;

void main() {
    vec2 texel  = 1.0 / vec2(textureSize(ssaoTex, 0));
    float result = 0.0;
    for (int x = -2; x <= 2; x++) {
        for (int y = -2; y <= 2; y++) {
            result += texture(ssaoTex, fragUV + vec2(x, y) * texel).r;
        }
    }
    outAO = vec4(result / 25.0, 0.0, 0.0, 1.0);
}
`

// ── Text / HUD program ────────────────────────────────────────────────────────

// textVertSrc maps pixel-space quads to NDC with Y down so (0,0) is the
// top-left corner of the window.
const textVertSrc = `
#version 410 core
layout(location = 0) in vec2 inPos;  // pixels
layout(location = 1) in vec2 inUV;

uniform vec2 screenSize;

out vec2 fragUV;

void main() {
    vec2 ndc = vec2(inPos.x / screenSize.x * 2.0 - 1.0,
                    1.0 - inPos.y / screenSize.y * 2.0);
    gl_Position = vec4(ndc, 0.0, 1.0);
    fragUV      = inUV;
}
`

// textFragSrc draws glyph quads from the single-channel font atlas, or a
// solid tinted rect when useTex is false (HUD panel backgrounds).
const textFragSrc = `
#version 410 core
in  vec2 fragUV;
out vec4 outColor;

uniform sampler2D fontTex;
uniform vec4      tint;
uniform bool      useTex;

void main() {
    float a = 1.0;
    if (useTex) {
        a = texture(fontTex, fragUV).r;
        if (a < 0.5) discard;
    }
    outColor = vec4(tint.rgb, tint.a * a);
}
`
